package main

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"tariff-compare/internal/analysis"
	"tariff-compare/internal/comparison"
	"tariff-compare/internal/config"
	"tariff-compare/internal/logging"
	"tariff-compare/internal/model"
	"tariff-compare/internal/report"

	"go.uber.org/zap"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	switch os.Args[1] {
	case "compare":
		cmdCompare(os.Args[2:])
	case "report":
		cmdReport(os.Args[2:])
	case "batch":
		cmdBatch(os.Args[2:])
	case "sweep":
		cmdSweep(os.Args[2:])
	default:
		usage()
		os.Exit(2)
	}
}

func usage() {
	fmt.Println("usage:")
	fmt.Println("  cli compare --peak-consumption-kwh 100 --off-peak-consumption-kwh 200 \\")
	fmt.Println("      --captive-peak-tariff 0.9 --captive-off-peak-tariff 0.6 --tax-rate-percent 20 \\")
	fmt.Println("      --free-market-tariff 0.5 [--include-solar --solar-generation-kwh 150] [--json]")
	fmt.Println("  cli report  <compare flags> --format pdf|xlsx --out energy-comparison.pdf [--title T] [--state SP]")
	fmt.Println("  cli batch   --scenarios examples/scenarios.yaml --out results/comparison.csv")
	fmt.Println("  cli sweep   <compare flags> --from 0 --to 30 --step 5")
	fmt.Println("")
	fmt.Println("notes:")
	fmt.Println("  - every command accepts --config (service YAML) for currency and offset defaults")
	fmt.Println("  - offsets default to 100% when omitted; solar generation is required with --include-solar")
}

func cmdCompare(args []string) {
	fs := flag.NewFlagSet("compare", flag.ExitOnError)
	env := addEnvFlags(fs)
	inputs := addInputFlags(fs)
	asJSON := fs.Bool("json", false, "Print the result as JSON")
	_ = fs.Parse(args)

	cfg, logger := env.load()
	defer func() { _ = logger.Sync() }()

	in, res := compareOrExit(logger, inputs, cfg.Defaults)
	potential := analysis.ComputePotential(in, res)

	if *asJSON {
		if err := writeCompareJSON(os.Stdout, cfg.Report.Currency, in, res, potential); err != nil {
			fatal(logger, "encoding result", err)
		}
		return
	}

	r := report.New(in, res, report.Options{Currency: cfg.Report.Currency})
	printSummary(r)
	fmt.Println()
	fmt.Println("Breakdown:")
	for _, l := range r.BreakdownLines() {
		fmt.Printf("  %-34s %s\n", l.Label, l.Value)
	}
}

type compareOutput struct {
	Input     model.TariffInput         `json:"input"`
	Result    *model.TariffResult       `json:"result"`
	Potential analysis.SavingsPotential `json:"potential"`
	Headline  string                    `json:"headline"`
}

// writeCompareJSON prints a comparison with the same snake_case keys the HTTP API uses.
func writeCompareJSON(w io.Writer, currency string, in model.TariffInput, res *model.TariffResult, potential analysis.SavingsPotential) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(compareOutput{
		Input:     in,
		Result:    res,
		Potential: potential,
		Headline:  report.Headline(currency, res),
	})
}

func cmdReport(args []string) {
	fs := flag.NewFlagSet("report", flag.ExitOnError)
	env := addEnvFlags(fs)
	inputs := addInputFlags(fs)
	format := fs.String("format", "", "pdf or xlsx (default: from --out extension, else pdf)")
	outPath := fs.String("out", "", "Output path (default: energy-comparison.<format>)")
	title := fs.String("title", "", "Report title (default: report.title from config)")
	company := fs.String("company", "", "Company line under the title")
	state := fs.String("state", "", "State/region label, e.g. SP")
	_ = fs.Parse(args)

	cfg, logger := env.load()
	defer func() { _ = logger.Sync() }()

	f := strings.ToLower(strings.TrimSpace(*format))
	if f == "" {
		f = strings.TrimPrefix(strings.ToLower(filepath.Ext(*outPath)), ".")
	}
	if f == "" {
		f = "pdf"
	}
	var write func(*os.File, report.Report) error
	switch f {
	case "pdf":
		write = func(w *os.File, r report.Report) error { return report.WritePDF(w, r) }
	case "xlsx":
		write = func(w *os.File, r report.Report) error { return report.WriteXLSX(w, r) }
	default:
		fmt.Fprintf(os.Stderr, "unsupported format %q (expected pdf or xlsx)\n", f)
		os.Exit(2)
	}

	in, res := compareOrExit(logger, inputs, cfg.Defaults)

	opts := report.Options{
		Title:    firstNonEmpty(*title, cfg.Report.Title),
		Company:  firstNonEmpty(*company, cfg.Report.Company),
		State:    *state,
		Currency: cfg.Report.Currency,
	}
	r := report.New(in, res, opts)

	path := *outPath
	if path == "" {
		path = r.Filename(f)
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			fatal(logger, "creating output directory", err)
		}
	}
	out, err := os.Create(path)
	if err != nil {
		fatal(logger, "creating report file", err)
	}
	if err := write(out, r); err != nil {
		_ = out.Close()
		fatal(logger, "rendering report", err)
	}
	if err := out.Close(); err != nil {
		fatal(logger, "closing report file", err)
	}

	logger.Debug("report written", zap.String("path", path), zap.String("report_id", r.ID.String()))
	fmt.Printf("Wrote %s report %s to %s\n", strings.ToUpper(f), r.ID, path)
	fmt.Println(r.Headline())
}

func cmdBatch(args []string) {
	fs := flag.NewFlagSet("batch", flag.ExitOnError)
	env := addEnvFlags(fs)
	scenariosPath := fs.String("scenarios", "", "Path to scenario YAML or JSON")
	outPath := fs.String("out", "results/comparison.csv", "Output CSV path (empty to skip)")
	_ = fs.Parse(args)

	if *scenariosPath == "" {
		fmt.Println("--scenarios is required")
		os.Exit(2)
	}

	cfg, logger := env.load()
	defer func() { _ = logger.Sync() }()

	file, err := config.LoadScenarios(*scenariosPath)
	if err != nil {
		fatal(logger, "loading scenarios", err)
	}

	results := comparison.New().CompareAll(file.Build(cfg.Defaults))

	if *outPath != "" {
		if err := os.MkdirAll(filepath.Dir(*outPath), 0o755); err != nil {
			fatal(logger, "creating output directory", err)
		}
		if err := comparison.WriteResultsCSV(*outPath, results); err != nil {
			fatal(logger, "writing csv", err)
		}
		fmt.Printf("Wrote %d rows to %s\n", len(results), *outPath)
	}

	cur := cfg.Report.Currency
	ranked := analysis.RankBySavings(results)
	fmt.Printf("%-4s %-24s %-16s %-16s %-16s %-8s\n", "rank", "scenario", "captive", "free", "savings", "savings%")
	for _, r := range ranked {
		pct := "n/a"
		if v, ok := analysis.SavingsPercent(r.Result.SavingsWithSolar, r.Result.CostCaptiveNoSolar); ok {
			pct = report.FormatPercent(v)
		}
		fmt.Printf("%-4d %-24s %-16s %-16s %-16s %-8s\n",
			r.Rank,
			r.Name,
			report.FormatMoney(cur, r.Result.CostCaptiveWithSolar),
			report.FormatMoney(cur, r.Result.CostFreeWithSolar),
			report.FormatMoney(cur, r.Result.SavingsWithSolar),
			pct,
		)
	}

	rejected := 0
	for _, r := range results {
		if r.Err == nil {
			continue
		}
		rejected++
		fmt.Fprintf(os.Stderr, "rejected %s: %v\n", r.Name, r.Err)
	}
	if rejected > 0 {
		os.Exit(1)
	}
}

func cmdSweep(args []string) {
	fs := flag.NewFlagSet("sweep", flag.ExitOnError)
	env := addEnvFlags(fs)
	inputs := addInputFlags(fs)
	from := fs.Float64("from", 0, "First tax rate (percent)")
	to := fs.Float64("to", 30, "Last tax rate (percent)")
	step := fs.Float64("step", 5, "Tax rate step (percent)")
	_ = fs.Parse(args)

	cfg, logger := env.load()
	defer func() { _ = logger.Sync() }()

	// The swept rate replaces whatever was given, so the tax flag may be omitted.
	if strings.TrimSpace(*inputs.values[model.FieldTaxRatePercent]) == "" {
		*inputs.values[model.FieldTaxRatePercent] = strconv.FormatFloat(*from, 'f', -1, 64)
	}
	in, err := inputs.input(cfg.Defaults)
	if err != nil {
		exitInvalid(logger, err)
	}

	points, err := analysis.TaxSweep(in, *from, *to, *step)
	if err != nil {
		exitInvalid(logger, err)
	}

	cur := cfg.Report.Currency
	fmt.Printf("%-8s %-16s %-16s %-16s\n", "tax%", "captive", "free", "savings")
	for _, p := range points {
		fmt.Printf("%-8s %-16s %-16s %-16s\n",
			report.FormatPercent(p.TaxRatePercent),
			report.FormatMoney(cur, p.Result.CostCaptiveWithSolar),
			report.FormatMoney(cur, p.Result.CostFreeWithSolar),
			report.FormatMoney(cur, p.Result.SavingsWithSolar),
		)
	}
}

func printSummary(r report.Report) {
	fmt.Println(r.Headline())
	fmt.Println()
	fmt.Printf("%-24s %16s %16s\n", "", "with solar", "without solar")
	for _, row := range r.SummaryRows() {
		fmt.Printf("%-24s %16s %16s\n", row.Label, row.WithSolar, row.NoSolar)
	}
}

// envFlags are the flags every subcommand shares.
type envFlags struct {
	configPath *string
	logLevel   *string
}

func addEnvFlags(fs *flag.FlagSet) *envFlags {
	return &envFlags{
		configPath: fs.String("config", "", "Path to service config YAML (optional)"),
		logLevel:   fs.String("log-level", "", "debug, info, warn or error (default: log.level from config)"),
	}
}

func (e *envFlags) load() (*config.AppConfig, *zap.Logger) {
	cfg, err := config.LoadApp(*e.configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}
	level := firstNonEmpty(*e.logLevel, cfg.Log.Level)
	logger, err := logging.NewConsoleLogger(level)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		os.Exit(1)
	}
	return cfg, logger
}

// inputFlags keeps numeric flags as text so an omitted flag can be told apart
// from zero and bad text is reported with the field name.
type inputFlags struct {
	values       map[string]*string
	includeSolar *bool
}

var numericFields = []struct {
	field string
	usage string
}{
	{model.FieldPeakConsumption, "Peak-period consumption (kWh)"},
	{model.FieldOffPeakConsumption, "Off-peak consumption (kWh)"},
	{model.FieldCaptivePeakTariff, "Captive market peak tariff (per kWh)"},
	{model.FieldCaptiveOffPeakTariff, "Captive market off-peak tariff (per kWh)"},
	{model.FieldTaxRatePercent, "Tax on the captive cost (percent, e.g. 18)"},
	{model.FieldFreeMarketTariff, "Free market tariff (per kWh)"},
	{model.FieldSolarGeneration, "Solar generation (kWh); required with --include-solar"},
	{model.FieldCaptiveOffsetPercent, "Solar credited in the captive market (percent; default from config)"},
	{model.FieldFreeOffsetPercent, "Solar credited in the free market (percent; default from config)"},
}

func flagName(field string) string {
	return strings.ReplaceAll(field, "_", "-")
}

func addInputFlags(fs *flag.FlagSet) *inputFlags {
	f := &inputFlags{values: make(map[string]*string, len(numericFields))}
	for _, nf := range numericFields {
		f.values[nf.field] = fs.String(flagName(nf.field), "", nf.usage)
	}
	f.includeSolar = fs.Bool(flagName(model.FieldIncludeSolar), false, "Credit solar generation against both regimes")
	return f
}

func (f *inputFlags) input(d config.Defaults) (model.TariffInput, error) {
	verr := &model.ValidationError{}
	unparsable := map[string]bool{}
	parse := func(field string) *float64 {
		s := strings.TrimSpace(*f.values[field])
		if s == "" {
			return nil
		}
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			verr.Add(field, "must be a number")
			unparsable[field] = true
			return nil
		}
		return &v
	}

	ic := config.InputConfig{
		PeakConsumptionKWh:    parse(model.FieldPeakConsumption),
		OffPeakConsumptionKWh: parse(model.FieldOffPeakConsumption),
		CaptivePeakTariff:     parse(model.FieldCaptivePeakTariff),
		CaptiveOffPeakTariff:  parse(model.FieldCaptiveOffPeakTariff),
		TaxRatePercent:        parse(model.FieldTaxRatePercent),
		FreeMarketTariff:      parse(model.FieldFreeMarketTariff),
		IncludeSolar:          f.includeSolar,
		SolarGenerationKWh:    parse(model.FieldSolarGeneration),
		CaptiveOffsetPercent:  parse(model.FieldCaptiveOffsetPercent),
		FreeOffsetPercent:     parse(model.FieldFreeOffsetPercent),
	}

	in, err := ic.ToModelInput(d)
	if err != nil {
		var missing *model.ValidationError
		if !errors.As(err, &missing) {
			return model.TariffInput{}, err
		}
		for _, fe := range missing.Fields {
			if !unparsable[fe.Field] {
				verr.Add(fe.Field, fe.Reason)
			}
		}
	}
	if err := verr.OrNil(); err != nil {
		return model.TariffInput{}, err
	}
	return in, nil
}

func compareOrExit(logger *zap.Logger, inputs *inputFlags, d config.Defaults) (model.TariffInput, *model.TariffResult) {
	in, err := inputs.input(d)
	if err != nil {
		exitInvalid(logger, err)
	}
	res, err := comparison.Compare(in)
	if err != nil {
		exitInvalid(logger, err)
	}
	return in, res
}

// exitInvalid prints every rejected field with its flag name and exits 2.
func exitInvalid(logger *zap.Logger, err error) {
	var verr *model.ValidationError
	if !errors.As(err, &verr) {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	logger.Debug("input rejected", zap.Strings("fields", verr.Names()))
	fmt.Fprintln(os.Stderr, "invalid input:")
	for _, fe := range verr.Fields {
		fmt.Fprintf(os.Stderr, "  --%s %s\n", flagName(fe.Field), fe.Reason)
	}
	os.Exit(2)
}

func fatal(logger *zap.Logger, msg string, err error) {
	logger.Error(msg, zap.Error(err))
	_ = logger.Sync()
	os.Exit(1)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
