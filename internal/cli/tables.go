package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/tsawler/tabstruct/export"
	"github.com/tsawler/tabstruct/logging"
	"github.com/tsawler/tabstruct/model"
)

// readTable loads a table written as structure JSON, canonical JSON, or
// HTML. For HTML the first table is used.
func readTable(cmd *cobra.Command, path string) (*model.Table, error) {
	r, err := openInput(cmd, path)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	t, err := export.Read(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return t, nil
}

// logWarnings reports non-fatal issues at warn level on the context logger
func logWarnings(ctx context.Context, warnings []model.Warning) {
	log := logging.FromContext(ctx)
	for _, w := range warnings {
		log.Warn().Str("code", string(w.Code)).Str("table", w.Table).Int("row", w.RowID).Msg(w.Message)
	}
}
