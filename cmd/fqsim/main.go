package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"github.com/theapemachine/errnie"
	"go.uber.org/automaxprocs/maxprocs"

	"github.com/theapemachine/fqsim"
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12")).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
	zeroStyle   = cellStyle.Foreground(lipgloss.Color("8"))
	titleStyle  = lipgloss.NewStyle().Bold(true).MarginBottom(1)
)

func main() {
	if err := execute(os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, "fqsim:", err)
		os.Exit(1)
	}
}

func execute(args []string) error {
	flags := pflag.NewFlagSet("fqsim", pflag.ContinueOnError)
	configFile := flags.String("config", "", "path to a config file (yaml, toml or json)")
	flags.Int("qubits", 7, "number of qubits in the register")
	flags.Int("samples", 1000, "number of measurement samples")
	flags.Uint64("seed", 0, "sampler seed, 0 picks one at random")
	flags.Int("workers", 0, "worker goroutines, 0 uses every CPU")
	flags.String("precision", string(fqsim.Double), "amplitude precision: single or double")
	flags.IntSlice("z", nil, "qubits that get a Pauli-Z after the Hadamard layer")
	flags.StringSlice("gate", nil, "extra gates as name:qubit, applied after the Pauli-Z targets")
	flags.Bool("plain", false, "print the plain text table instead of the styled one")

	if err := flags.Parse(args); err != nil {
		return err
	}

	v := viper.New()
	v.SetEnvPrefix("FQSIM")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if err := v.BindPFlags(flags); err != nil {
		return err
	}

	if *configFile != "" {
		v.SetConfigFile(*configFile)
		if err := v.ReadInConfig(); err != nil {
			return fmt.Errorf("read config: %w", err)
		}
	}

	undo, err := maxprocs.Set(maxprocs.Logger(func(format string, args ...interface{}) {
		errnie.Debug(format, args...)
	}))
	defer undo()
	if err != nil {
		errnie.Warn("could not adjust GOMAXPROCS: %v", err)
	}

	cfg, err := fqsim.LoadConfig(v)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	opts := runOptions{
		qubits:  v.GetInt("qubits"),
		samples: v.GetInt("samples"),
		z:       v.GetIntSlice("z"),
		plain:   v.GetBool("plain"),
	}

	for _, arg := range v.GetStringSlice("gate") {
		op, err := parseGate(arg)
		if err != nil {
			return err
		}
		opts.gates = append(opts.gates, op)
	}

	if cfg.Precision == fqsim.Single {
		return run[complex64](ctx, cfg, opts)
	}
	return run[complex128](ctx, cfg, opts)
}

type runOptions struct {
	qubits  int
	samples int
	z       []int
	gates   []gateOp
	plain   bool
}

type gateOp struct {
	gate   fqsim.Gate
	target int
}

// parseGate reads a "name:qubit" pair such as "x:3".
func parseGate(arg string) (gateOp, error) {
	name, qubit, ok := strings.Cut(arg, ":")
	if !ok {
		return gateOp{}, fmt.Errorf("gate %q: want name:qubit", arg)
	}

	gate, err := fqsim.LookupGate(name)
	if err != nil {
		return gateOp{}, err
	}

	target, err := strconv.Atoi(qubit)
	if err != nil {
		return gateOp{}, fmt.Errorf("gate %q: %w", arg, err)
	}
	return gateOp{gate: gate, target: target}, nil
}

// run puts every qubit through a Hadamard, applies the Pauli-Z targets and
// any extra gates, then prints the measured histogram.
func run[T fqsim.Amplitude](ctx context.Context, cfg *fqsim.Config, opts runOptions) error {
	sim, err := fqsim.New[T](ctx, opts.qubits, cfg)
	if err != nil {
		return err
	}
	defer sim.Close()

	for q := 0; q < opts.qubits; q++ {
		if err := sim.H(q); err != nil {
			return err
		}
	}

	for _, q := range opts.z {
		if err := sim.Z(q); err != nil {
			return err
		}
	}

	for _, op := range opts.gates {
		if err := sim.ApplyGate(op.gate, op.target); err != nil {
			return err
		}
	}

	hist, err := sim.Measure(opts.samples)
	if err != nil {
		return err
	}

	if opts.plain {
		_, err = hist.WriteTo(os.Stdout)
		return err
	}

	fmt.Println(render(hist))
	errnie.Debug("metrics %v", sim.Metrics().ExportMetrics())
	return nil
}

func render(hist *fqsim.Histogram) string {
	rows := make([][]string, 0, len(hist.Counts))
	for _, entry := range hist.Entries() {
		rows = append(rows, []string{entry.Label, strconv.FormatUint(entry.Count, 10)})
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("State", "Count").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return headerStyle
			case hist.Counts[row] == 0:
				return zeroStyle
			default:
				return cellStyle
			}
		})

	title := titleStyle.Render(fmt.Sprintf("Quantum State Probabilities (%d qubits, %d samples)", hist.NumQubits, hist.Samples))
	return lipgloss.JoinVertical(lipgloss.Left, title, t.Render())
}
