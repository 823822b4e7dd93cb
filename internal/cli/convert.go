package cli

import (
	"fmt"
	"iter"
	"time"

	"github.com/spf13/cobra"

	"github.com/fitbridge/fitbridge/internal/collect"
	"github.com/fitbridge/fitbridge/internal/export"
	"github.com/fitbridge/fitbridge/internal/extract"
	"github.com/fitbridge/fitbridge/internal/logging"
	"github.com/fitbridge/fitbridge/internal/models"
	"github.com/fitbridge/fitbridge/internal/session"
	"github.com/fitbridge/fitbridge/internal/source"
	"github.com/fitbridge/fitbridge/internal/timeutil"
	"github.com/fitbridge/fitbridge/internal/validator"
)

var convertCmd = &cobra.Command{
	Use:   "convert",
	Short: "Convert one export directory to OSCAR-importable files",
	Example: `  fitbridge convert --format takeout --input ~/Downloads/Takeout
  fitbridge convert -f healthsync -i ~/HealthSync -o out -s 2023-5-1 -e 2023-5-31 -v`,
	RunE: runConvert,
}

func init() {
	rootCmd.AddCommand(convertCmd)

	convertCmd.Flags().StringP("format", "f", "", "source format (see 'fitbridge formats')")
	convertCmd.Flags().StringP("input", "i", "", "path to the export directory")
	convertCmd.Flags().StringP("export", "o", "", "directory to write output files to")
	convertCmd.Flags().StringP("start-date", "s", "", "earliest date to convert (YYYY-M-D)")
	convertCmd.Flags().StringP("end-date", "e", "", "latest date to convert (YYYY-M-D)")
	convertCmd.MarkFlagRequired("format")
	convertCmd.MarkFlagRequired("input")
}

func runConvert(cmd *cobra.Command, args []string) error {
	started := time.Now()

	format, _ := cmd.Flags().GetString("format")
	input, _ := cmd.Flags().GetString("input")
	exportDir, _ := cmd.Flags().GetString("export")
	startRaw, _ := cmd.Flags().GetString("start-date")
	endRaw, _ := cmd.Flags().GetString("end-date")

	if exportDir == "" {
		exportDir = cfg.Export.Dir
	}

	window, err := dateWindow(startRaw, endRaw, time.Now())
	if err != nil {
		return err
	}

	handler, err := registry.Lookup(format)
	if err != nil {
		return err
	}
	base, err := handler.Resolve(input)
	if err != nil {
		return err
	}
	loc, err := handler.Timezone(base)
	if err != nil {
		return err
	}
	files, err := handler.Files(base)
	if err != nil {
		return err
	}
	hcfg := handler.Config()

	log.Info("converting export", logging.Format(handler.Name()), logging.File(base))

	spo2, err := collect.Vitals(vitalsSource(handler, hcfg, files, models.KindSpO2, extract.SpO2MinValid, loc, window), log)
	if err != nil {
		return err
	}
	bpm, err := collect.Vitals(vitalsSource(handler, hcfg, files, models.KindBPM, extract.BPMMinValid, loc, window), log)
	if err != nil {
		return err
	}
	sleep, err := sleepStream(handler, hcfg, files, window)
	if err != nil {
		return err
	}

	chunks := session.Chunk(
		session.Split(session.Pair(spo2, bpm), cfg.Pipeline.SessionSplit()),
		cfg.Pipeline.ChunkSize,
	)
	paths, err := export.WriteViatom(exportDir, chunks)
	if err != nil {
		return err
	}
	log.Info("wrote oximetry session files", logging.Count(len(paths)))

	fields := make([]string, len(hcfg.Transforms))
	for i, tp := range hcfg.Transforms {
		fields[i] = tp.Field
	}
	sleepPath, err := export.WriteDreem(exportDir, fields, sleep)
	if err != nil {
		return err
	}
	log.Info("wrote sleep session file", logging.File(sleepPath))

	log.Info(fmt.Sprintf("Finished processing in %s", time.Since(started).Round(time.Millisecond)))
	return nil
}

func vitalsSource(h source.Handler, hcfg source.Config, files map[models.Kind][]string, kind models.Kind, minValid int, loc *time.Location, window timeutil.Window) collect.VitalsSource {
	return collect.VitalsSource{
		Files:    files[kind],
		FileType: h.FileType(kind),
		Params: extract.VitalsParams{
			Timestamp:  hcfg.VitalsTimestamp[kind],
			Value:      hcfg.VitalsValue[kind],
			Layout:     hcfg.TimestampLayout,
			Kind:       kind.Label(),
			MinValid:   minValid,
			Location:   loc,
			UseSeconds: hcfg.UseSeconds,
		},
		Window: window,
	}
}

func sleepStream(h source.Handler, hcfg source.Config, files map[models.Kind][]string, window timeutil.Window) (iter.Seq2[models.SleepRecord, error], error) {
	src := collect.SleepSource{
		Files:    files[models.KindSleep],
		FileType: h.FileType(models.KindSleep),
		Rules: validator.Rules{
			Required:        hcfg.SleepRequired,
			Timestamp:       hcfg.SleepTimestamp,
			TimestampLayout: hcfg.SleepDateLayout,
			Window:          window,
			Stages:          hcfg.SleepStages,
		},
		Transforms: hcfg.Transforms,
	}
	if hcfg.SleepReader != nil {
		return collect.SleepWith(src, hcfg.SleepReader), nil
	}
	return collect.Sleep(src)
}
