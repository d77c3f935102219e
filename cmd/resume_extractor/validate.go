package main

import (
	"fmt"
	"os"
	"slices"

	"github.com/spf13/cobra"

	"github.com/jonathan/resume-extractor/internal/schemas"
	schemafiles "github.com/jonathan/resume-extractor/schemas"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate a JSON file against a schema",
	Long: fmt.Sprintf(`Validate a JSON file against a JSON Schema.

--schema accepts a file path or the name of a bundled schema: %v`, schemafiles.Names()),
	Args: cobra.NoArgs,
	RunE: runValidate,
}

var (
	validateSchema string
	validateJSON   string
)

func init() {
	validateCmd.Flags().StringVarP(&validateSchema, "schema", "s", schemafiles.SectionedDocument, "Schema file or bundled schema name")
	validateCmd.Flags().StringVarP(&validateJSON, "json", "j", "", "JSON file to validate (required)")

	validateCmd.MarkFlagRequired("json") //nolint:errcheck

	rootCmd.AddCommand(validateCmd)
}

func runValidate(cmd *cobra.Command, _ []string) error {
	var err error
	if slices.Contains(schemafiles.Names(), validateSchema) {
		data, readErr := os.ReadFile(validateJSON)
		if readErr != nil {
			return fmt.Errorf("failed to read JSON file: %w", readErr)
		}
		err = schemas.ValidateEmbedded(validateSchema, data)
	} else {
		schemaPath := schemas.ResolveSchemaPath(validateSchema)
		if schemaPath == "" {
			return fmt.Errorf("schema not found: %s", validateSchema)
		}
		err = schemas.ValidateJSON(schemaPath, validateJSON)
	}
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "✅ %s is valid against %s\n", validateJSON, validateSchema)
	return nil
}
