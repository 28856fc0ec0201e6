package main

import (
	"encoding/json"
	"io"
	"os"
	"strings"

	"github.com/Laisky/errors/v2"
	"github.com/spf13/cobra"

	"github.com/Laisky/transport-order-mcp/model"
)

// printJSON writes v as indented JSON to the command output.
func printJSON(cmd *cobra.Command, v any) error {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return errors.Wrap(err, "marshal result")
	}
	_, err = cmd.OutOrStdout().Write(append(out, '\n'))
	return err
}

// finish prints the result and turns a failed envelope into an exit error.
func finish(cmd *cobra.Command, env *model.Envelope, result any) error {
	if err := printJSON(cmd, result); err != nil {
		return err
	}
	return envelopeError(env)
}

func envelopeError(env *model.Envelope) error {
	if env.Success {
		return nil
	}
	if env.ErrorMessage != "" {
		return errors.Errorf("%s: %s", env.ErrorType, env.ErrorMessage)
	}
	return errors.Errorf("%s: %s", env.ErrorType, strings.Join(env.Errors, "; "))
}

// readInput reads a file, or the command input when path is empty or "-".
func readInput(cmd *cobra.Command, path string) (string, error) {
	if path == "" || path == "-" {
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return "", errors.Wrap(err, "read stdin")
		}
		return string(data), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return "", errors.Wrapf(err, "read %s", path)
	}
	return string(data), nil
}

func writeFile(path, content string) error {
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return errors.Wrapf(err, "write %s", path)
	}
	return nil
}
