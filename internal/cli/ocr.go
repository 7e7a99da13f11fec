package cli

import (
	"image"

	"github.com/spf13/cobra"

	"github.com/tsawler/tabstruct/export"
	"github.com/tsawler/tabstruct/model"
	"github.com/tsawler/tabstruct/ocr"
	"github.com/tsawler/tabstruct/pipeline"
)

func (a *app) newOCRCommand() *cobra.Command {
	var (
		output    string
		imagePath string
	)

	cmd := &cobra.Command{
		Use:     "ocr <structure.json>",
		GroupID: "stages",
		Short:   "Fill cell text from the table image",
		Long: `OCR crops every cell of a built table from the table image, enhances it,
and recognizes its text with Tesseract. The binary must be built with
-tags ocr. A cell that cannot be read is left empty with a warning.`,
		Example: `  tabstruct ocr table.json --image table.png -o filled.json`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			table, err := readTable(cmd, args[0])
			if err != nil {
				return err
			}

			img, err := pipeline.LoadImage(imagePath)
			if err != nil {
				return err
			}
			if table.Bounds != nil && isPageImage(img, *table.Bounds) {
				img = pipeline.CropImage(img, *table.Bounds)
			}

			client, err := ocr.NewWithOptions(a.cfg.OCROptions())
			if err != nil {
				return err
			}
			defer client.Close()

			warnings, err := a.cfg.CellFiller(client, a.log).FillTable(cmd.Context(), img, table)
			logWarnings(cmd.Context(), warnings)
			if err != nil {
				return err
			}

			data, err := export.ToStructureJSON(table)
			if err != nil {
				return err
			}
			return writeOutput(cmd, output, data)
		},
	}

	f := cmd.Flags()
	f.StringVarP(&output, "output", "o", "", "output file (default: stdout)")
	f.StringVar(&imagePath, "image", "", "table or page image (PNG or JPEG)")
	f.String("lang", "eng", "Tesseract language(s), '+' separated")
	f.Float64("contrast", 1.8, "contrast factor applied to each cell")
	f.String("debug-dir", "", "save preprocessed cell images here")
	_ = cmd.MarkFlagRequired("image")
	return cmd
}

// isPageImage reports whether img extends past the table region, in which
// case the region is cropped out of it.
func isPageImage(img image.Image, region model.Rect) bool {
	b := img.Bounds()
	return float64(b.Dx()) > region.Right || float64(b.Dy()) > region.Bottom
}
