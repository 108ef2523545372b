package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"jiahe-site/auth"
	"jiahe-site/database"
	"jiahe-site/models"
	"jiahe-site/store"

	"github.com/spf13/cobra"
)

var hashPasswordCmd = &cobra.Command{
	Use:   "hash-password <password>",
	Short: "Print the bcrypt hash to put in admin.passwordHash",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		hash, err := auth.HashPassword(args[0])
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), hash)
		return nil
	},
}

var exportCmd = &cobra.Command{
	Use:   "export [file]",
	Short: "Write the stored site content as JSON (stdout without a file)",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		docs, closeDB, err := openDocuments()
		if err != nil {
			return err
		}
		defer closeDB()

		data, version, err := store.NewLocal(docs).Fetch(cmd.Context())
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if len(args) == 1 {
			f, err := os.Create(args[0])
			if err != nil {
				return err
			}
			defer f.Close()
			out = f
		}

		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		if err := enc.Encode(data); err != nil {
			return err
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "exported version %d\n", version)
		return nil
	},
}

var importDefaults bool

var importCmd = &cobra.Command{
	Use:   "import [file]",
	Short: "Replace the stored site content with a JSON document",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var data *models.SiteData
		switch {
		case importDefaults:
			data = models.Defaults()
		case len(args) == 1:
			raw, err := readFile(args[0])
			if err != nil {
				return err
			}
			if data, err = store.DecodeSiteData(raw); err != nil {
				return err
			}
		default:
			return fmt.Errorf("a file or --defaults is required")
		}

		if _, err := auth.UpgradeLegacyPassword(&data.Admin); err != nil {
			return err
		}

		docs, closeDB, err := openDocuments()
		if err != nil {
			return err
		}
		defer closeDB()

		result, err := store.NewLocal(docs).Replace(cmd.Context(), data, 0)
		if err != nil {
			return err
		}
		if !result.Success {
			return fmt.Errorf("import rejected: %s", result.Message)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "imported as version %d\n", result.Version)
		return nil
	},
}

func init() {
	importCmd.Flags().BoolVar(&importDefaults, "defaults", false, "import the built-in default content")
}

func readFile(name string) ([]byte, error) {
	if name == "-" {
		return io.ReadAll(os.Stdin)
	}
	return os.ReadFile(name)
}

// openDocuments opens the local store database for offline commands.
func openDocuments() (store.Documents, func(), error) {
	cfg, log, err := bootstrap()
	if err != nil {
		return nil, nil, err
	}
	db, err := database.InitDB(cfg, log)
	if err != nil {
		return nil, nil, err
	}
	return store.NewRepository(db), func() { _ = database.Close(db) }, nil
}
