package agent

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/reagent-dev/reagent/internal/docstore"
	llmmock "github.com/reagent-dev/reagent/internal/llm/mock"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadDefinitionYAML(t *testing.T) {
	path := writeFile(t, "agent.yaml", `
variant: react-docstore
model: main
max_iterations: 7
repair_retry: "on"
`)

	def, err := LoadDefinition(path)
	require.NoError(t, err)
	require.Equal(t, VariantDocstore, def.Variant)
	require.Equal(t, "main", def.Model)
	require.Equal(t, 7, def.MaxIterations)
	require.Equal(t, "on", def.RepairRetry)
}

func TestLoadDefinitionJSON(t *testing.T) {
	path := writeFile(t, "agent.json", `{"variant": "zero-shot-react-description", "max_iterations": 4}`)

	def, err := LoadDefinition(path)
	require.NoError(t, err)
	require.Equal(t, VariantZeroShot, def.Variant)
	require.Equal(t, 4, def.MaxIterations)
}

func TestLoadDefinitionRejectsUnknownExtension(t *testing.T) {
	path := writeFile(t, "agent.toml", `variant = "x"`)

	_, err := LoadDefinition(path)
	var cerr *ConfigurationError
	require.ErrorAs(t, err, &cerr)
}

func TestLoadDefinitionRequiresVariant(t *testing.T) {
	path := writeFile(t, "agent.yaml", `model: main`)

	_, err := LoadDefinition(path)
	var cerr *ConfigurationError
	require.ErrorAs(t, err, &cerr)
}

func TestDefinitionBuildUnknownVariant(t *testing.T) {
	def := Definition{Variant: "conversational-react"}

	_, err := def.Build(Deps{Models: mockModels(&llmmock.Provider{})})
	var cerr *ConfigurationError
	require.ErrorAs(t, err, &cerr)
	require.Contains(t, cerr.Reason, `loading "conversational-react" agent not supported`)
}

func TestDefinitionBuildDocstoreRequiresStore(t *testing.T) {
	def := Definition{Variant: VariantDocstore}

	_, err := def.Build(Deps{Models: mockModels(&llmmock.Provider{})})
	var cerr *ConfigurationError
	require.ErrorAs(t, err, &cerr)
}

func TestDefinitionBuildRejectsBadRepairRetry(t *testing.T) {
	def := Definition{Variant: VariantZeroShot, RepairRetry: "sometimes"}

	tools, err := NewToolRegistry(noopTool("Echo", "e"))
	require.NoError(t, err)

	_, err = def.Build(Deps{Models: mockModels(&llmmock.Provider{}), Tools: tools})
	var cerr *ConfigurationError
	require.ErrorAs(t, err, &cerr)
}

func TestDefinitionBuildVariants(t *testing.T) {
	models := mockModels(&llmmock.Provider{})
	store := docstore.NewInMemory(docstore.Document{Title: "t", Content: "c"})

	tools, err := NewToolRegistry(noopTool("Echo", "e"))
	require.NoError(t, err)
	zs, err := Definition{Variant: VariantZeroShot, RepairRetry: "off"}.Build(Deps{Models: models, Tools: tools})
	require.NoError(t, err)
	require.Equal(t, VariantZeroShot, zs.Variant())

	ds, err := Definition{Variant: VariantDocstore}.Build(Deps{Models: models, Store: store})
	require.NoError(t, err)
	require.Equal(t, VariantDocstore, ds.Variant())

	search, err := NewToolRegistry(noopTool(SelfAskToolName, "s"))
	require.NoError(t, err)
	sa, err := Definition{Variant: VariantSelfAsk}.Build(Deps{Models: models, Tools: search})
	require.NoError(t, err)
	require.Equal(t, VariantSelfAsk, sa.Variant())
}
