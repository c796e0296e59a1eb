package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/caio-sobreiro/dicomko/dicom"
	koerrors "github.com/caio-sobreiro/dicomko/errors"
	"github.com/caio-sobreiro/dicomko/keyobject"
	"github.com/caio-sobreiro/dicomko/selection"
	"github.com/caio-sobreiro/dicomko/series"
	"github.com/caio-sobreiro/dicomko/types"
)

func demoCmd(g *globals) *cobra.Command {
	spec := series.SyntheticSpec{
		Name:        "kosel-demo",
		PatientName: "DEMO^PATIENT",
		PatientID:   "KOSEL001",
		Slices:      20,
		Spacing:     2.5,
	}
	cmd := &cobra.Command{
		Use:     "demo <dir>",
		Short:   "Write a synthetic CT series to a directory",
		Example: "  kosel demo ./series --slices 40 --spacing 1.25",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := args[0]
			if spec.Slices <= 0 {
				return fmt.Errorf("--slices must be positive")
			}
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return err
			}
			datasets := series.Synthetic(spec)
			for i, ds := range datasets {
				path := filepath.Join(dir, fmt.Sprintf("IM%04d.dcm", i+1))
				if err := writePart10(path, ds); err != nil {
					return err
				}
			}
			seriesUID := datasets[0].GetString(dicom.TagSeriesInstanceUID)
			g.logger.InfoContext(cmd.Context(), "Wrote synthetic series",
				"dir", dir,
				"series_uid", seriesUID,
				"image_count", len(datasets))
			fmt.Fprintln(cmd.OutOrStdout(), seriesUID)
			return nil
		},
	}
	flags := cmd.Flags()
	flags.StringVar(&spec.Name, "name", spec.Name, "Name the study and UIDs derive from")
	flags.StringVar(&spec.PatientName, "patient-name", spec.PatientName, "Patient name")
	flags.StringVar(&spec.PatientID, "patient-id", spec.PatientID, "Patient ID")
	flags.IntVar(&spec.Slices, "slices", spec.Slices, "Number of slices")
	flags.Float64Var(&spec.Spacing, "spacing", spec.Spacing, "Slice spacing in mm")
	flags.Float64Var(&spec.Origin, "origin", spec.Origin, "Location of the first slice")
	return cmd
}

func writePart10(path string, ds *dicom.Dataset) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := dicom.WritePart10(f, ds, types.ExplicitVRLittleEndian); err != nil {
		_ = f.Close()
		return fmt.Errorf("%s: %w", path, err)
	}
	return f.Close()
}

func listCmd(g *globals) *cobra.Command {
	return &cobra.Command{
		Use:   "list <dir>",
		Short: "List the series of a directory and their key object documents",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := g.openApp(ctx)
			if err != nil {
				return err
			}
			defer a.Close()

			all, err := series.LoadDir(ctx, args[0])
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, s := range all {
				fmt.Fprintf(out, "%s  %s\n", headerStyle.Render(s.UID), dimStyle.Render(fmt.Sprintf("%d images", s.Size(nil))))
				docs, err := a.registry.ForSeries(ctx, s.UID)
				if err != nil {
					return err
				}
				for _, doc := range docs {
					mode := "editable"
					if !doc.Editable() {
						mode = "read-only"
					}
					fmt.Fprintf(out, "  %-32s %3d refs  %-9s %s\n", doc, doc.Len(), mode, dimStyle.Render(doc.UID()))
				}
			}
			return nil
		},
	}
}

func toggleCmd(g *globals) *cobra.Command {
	var (
		vf     viewFlags
		pf     promptFlags
		ko     string
		remove bool
	)
	cmd := &cobra.Command{
		Use:   "toggle <dir>",
		Short: "Add or remove the current image in the selected key object document",
		Long: "Resolve the key object document references are recorded into, creating one when none is valid, " +
			"then add (or with --remove, remove) the current image.",
		Example: "  kosel toggle ./series --image 12 --description \"teaching file\"\n" +
			"  kosel toggle ./series --image 12 --ko \"teaching\" --remove\n" +
			"  kosel toggle ./series --image 3 --interactive",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := g.openApp(ctx)
			if err != nil {
				return err
			}
			defer a.Close()

			out := cmd.OutOrStdout()
			v, err := g.openView(ctx, args[0], vf, out)
			if err != nil {
				return err
			}
			coord := a.coordinator(g.prompter(pf))
			if ko != "" {
				doc, ok := a.registry.Lookup(ctx, v.Series().UID, ko)
				if !ok {
					return fmt.Errorf("no key object document matches %q: %w", ko, koerrors.ErrNotFound)
				}
				coord.UpdateFilter(ctx, v, selection.WithSelection(doc))
			}

			before := coord.CurrentSelection(v)
			changed, err := coord.SetKeyObjectReference(ctx, !remove, v)
			if err != nil {
				return err
			}
			if changed && coord.CurrentSelection(v) != before {
				// Resolution switched documents; record into the new one
				if changed, err = coord.SetKeyObjectReference(ctx, !remove, v); err != nil {
					return err
				}
			}
			selected := coord.CurrentSelection(v)
			switch {
			case selected == nil:
				fmt.Fprintln(out, warnStyle.Render("no document selected"))
			case changed:
				fmt.Fprintf(out, "%s %s (%d refs)\n", okStyle.Render("updated"), selected, selected.Len())
			default:
				fmt.Fprintf(out, "%s %s (%d refs)\n", dimStyle.Render("unchanged"), selected, selected.Len())
			}
			return nil
		},
	}
	vf.register(cmd)
	flags := cmd.Flags()
	flags.StringVar(&ko, "ko", "", "Select a document by UID or description first")
	flags.BoolVar(&remove, "remove", false, "Remove the current image instead of adding it")
	flags.BoolVarP(&pf.interactive, "interactive", "i", false, "Answer decision dialogs in the terminal")
	flags.IntSliceVar(&pf.choices, "choice", nil, "Scripted answers to decision dialogs, zero-based")
	flags.StringArrayVar(&pf.descriptions, "description", nil, "Scripted descriptions of new documents")
	return cmd
}

func filterCmd(g *globals) *cobra.Command {
	var (
		vf     viewFlags
		ko     string
		off    bool
		newest bool
	)
	cmd := &cobra.Command{
		Use:   "filter <dir>",
		Short: "Show the images of a series a key object document references",
		Example: "  kosel filter ./series --ko \"teaching\"\n" +
			"  kosel filter ./series --ko 2.25.1234 --image 7 --focused",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := g.openApp(ctx)
			if err != nil {
				return err
			}
			defer a.Close()

			out := cmd.OutOrStdout()
			v, err := g.openView(ctx, args[0], vf, out)
			if err != nil {
				return err
			}
			coord := a.coordinator(g.prompter(promptFlags{}))

			opts := []selection.FilterOption{selection.WithFilter(!off)}
			if ko != "" {
				doc, ok := a.registry.Lookup(ctx, v.Series().UID, ko)
				if !ok {
					return fmt.Errorf("no key object document matches %q: %w", ko, koerrors.ErrNotFound)
				}
				opts = append(opts, selection.WithSelection(doc))
			}
			if newest {
				opts = append(opts, selection.OnlyNewest())
			}
			index := coord.UpdateFilter(ctx, v, opts...)

			enabled, _ := coord.CurrentFilterState(v)
			fmt.Fprintf(out, "%s filter=%v index=%d\n", headerStyle.Render(v.Series().UID), enabled, index)
			printVisible(out, v)
			return nil
		},
	}
	vf.register(cmd)
	flags := cmd.Flags()
	flags.StringVar(&ko, "ko", "", "Document to filter by, UID or description")
	flags.BoolVar(&off, "off", false, "Disable the filter")
	flags.BoolVar(&newest, "newest", false, "Ignore the document if a newer one is already selected")
	return cmd
}

func exportCmd(g *globals) *cobra.Command {
	var seriesUID, output, part10Dir string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export key object documents as a YAML manifest",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := g.openApp(ctx)
			if err != nil {
				return err
			}
			defer a.Close()

			var docs []*keyobject.Document
			if seriesUID != "" {
				docs, err = a.registry.ForSeries(ctx, seriesUID)
			} else {
				docs, err = a.store.List(ctx)
			}
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			if output != "" && output != "-" {
				f, err := os.Create(output)
				if err != nil {
					return err
				}
				defer f.Close()
				w = f
			}
			if err := keyobject.ExportManifest(w, docs); err != nil {
				return err
			}

			if part10Dir != "" {
				if err := os.MkdirAll(part10Dir, 0o755); err != nil {
					return err
				}
				for _, doc := range docs {
					if err := writePart10(filepath.Join(part10Dir, doc.UID()+".dcm"), doc.Attributes()); err != nil {
						return err
					}
				}
			}
			g.logger.InfoContext(ctx, "Exported key object documents", "document_count", len(docs))
			return nil
		},
	}
	flags := cmd.Flags()
	flags.StringVar(&seriesUID, "series", "", "Only export documents of this series")
	flags.StringVarP(&output, "output", "o", "-", "Manifest file, - for stdout")
	flags.StringVar(&part10Dir, "part10", "", "Also write each document header as a Part 10 file into this directory")
	return cmd
}

func importCmd(g *globals) *cobra.Command {
	return &cobra.Command{
		Use:   "import <manifest>",
		Short: "Import key object documents from a YAML manifest as read-only documents",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()
			docs, err := keyobject.ImportManifest(f)
			if err != nil {
				return err
			}

			a, err := g.openApp(ctx)
			if err != nil {
				return err
			}
			defer a.Close()

			out := cmd.OutOrStdout()
			for _, doc := range docs {
				if doc.SeriesUID() == "" {
					return fmt.Errorf("document %s has no series", doc.UID())
				}
				registered, err := a.registry.Register(ctx, doc.SeriesUID(), doc)
				if err != nil {
					return err
				}
				if registered != doc {
					fmt.Fprintf(out, "%s %s\n", dimStyle.Render("already registered"), doc.UID())
					continue
				}
				fmt.Fprintf(out, "%s %s (%d refs)\n", okStyle.Render("imported"), doc, doc.Len())
			}
			return nil
		},
	}
}
