package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/google/subcommands"
	"github.com/hotteokboki/lseed-project/internal/interfaces/http/dto"
	"golang.org/x/sync/errgroup"
)

// env is shared by every subcommand
type env struct {
	server *string
	http   *http.Client
	out    io.Writer
	errOut io.Writer
	stdin  io.Reader
}

func (e *env) client() *Client {
	return NewClient(*e.server, e.http)
}

func (e *env) fail(err error) subcommands.ExitStatus {
	fmt.Fprintf(e.errOut, "Error: %v\n", err)
	return subcommands.ExitFailure
}

// Register adds the ledgerctl subcommands to c. server points at the
// global -server flag.
func Register(c *subcommands.Commander, server *string, hc *http.Client, out, errOut io.Writer) {
	e := &env{server: server, http: hc, out: out, errOut: errOut, stdin: os.Stdin}
	c.Register(&importCmd{env: e}, "ingestion")
	c.Register(&reopenCmd{env: e}, "ingestion")
	c.Register(&heatmapCmd{env: e}, "analytics")
	c.Register(&overviewCmd{env: e}, "analytics")
}

// scopeFlags are the filters shared by the analytics commands
func scopeFlags(f *flag.FlagSet, s *Scope) {
	f.StringVar(&s.From, "from", "", "first day of the window (YYYY-MM-DD)")
	f.StringVar(&s.To, "to", "", "last day of the window (YYYY-MM-DD)")
	f.StringVar(&s.ProgramID, "program", "", "restrict to one program id")
	f.StringVar(&s.UnitID, "unit", "", "restrict to one unit id")
	f.BoolVar(&s.Degrade, "degrade", false, "show an empty view instead of failing when data cannot be loaded")
}

type importCmd struct {
	*env
	kind  string
	unit  string
	month string
	key   string
	rows  string
}

func (*importCmd) Name() string     { return "import" }
func (*importCmd) Synopsis() string { return "upload one monthly report" }
func (*importCmd) Usage() string {
	return `ledgerctl import -kind <cash_in|cash_out|inventory> [-unit <id>] [-month <YYYY-MM>] [-key <idempotency key>] [-rows <jsonpath>] <file.json|->

  Uploads a report. Without -rows the file is sent as the import body.
  With -rows the transaction rows are selected from the file by a JSONPath
  expression and wrapped with -unit and -month.
`
}

func (c *importCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.kind, "kind", "", "report kind: cash_in, cash_out or inventory")
	f.StringVar(&c.unit, "unit", "", "unit id")
	f.StringVar(&c.month, "month", "", "reported month (YYYY-MM)")
	f.StringVar(&c.key, "key", "", "Idempotency-Key sent with the upload")
	f.StringVar(&c.rows, "rows", "", "JSONPath selecting the transaction rows")
}

func (c *importCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 1 || c.kind == "" {
		fmt.Fprint(c.errOut, c.Usage())
		return subcommands.ExitUsageError
	}
	raw, err := c.read(f.Arg(0))
	if err != nil {
		return c.fail(err)
	}
	body, err := BuildPayload(raw, c.kind, c.unit, c.month, c.rows)
	if err != nil {
		return c.fail(err)
	}
	data, replayed, err := c.client().Import(ctx, c.kind, body, c.key)
	if err != nil {
		return c.fail(err)
	}
	if replayed {
		fmt.Fprintln(c.errOut, "Already imported; showing the stored result.")
	}
	var pretty bytes.Buffer
	if err := json.Indent(&pretty, data, "", "  "); err != nil {
		pretty.Reset()
		pretty.Write(data)
	}
	fmt.Fprintln(c.out, pretty.String())
	return subcommands.ExitSuccess
}

func (c *importCmd) read(name string) ([]byte, error) {
	if name == "-" {
		return io.ReadAll(c.stdin)
	}
	return os.ReadFile(name)
}

type reopenCmd struct {
	*env
	unit  string
	month string
	kind  string
}

func (*reopenCmd) Name() string     { return "reopen" }
func (*reopenCmd) Synopsis() string { return "allow a unit-month to be imported again" }
func (*reopenCmd) Usage() string {
	return `ledgerctl reopen -unit <id> -month <YYYY-MM> -kind <cash_in|cash_out|inventory>

  Removes the duplicate guard of one report so it can be re-uploaded.
  Rows already stored are not deleted.
`
}

func (c *reopenCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.unit, "unit", "", "unit id")
	f.StringVar(&c.month, "month", "", "reported month (YYYY-MM)")
	f.StringVar(&c.kind, "kind", "", "report kind")
}

func (c *reopenCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.unit == "" || c.month == "" || c.kind == "" {
		fmt.Fprint(c.errOut, c.Usage())
		return subcommands.ExitUsageError
	}
	if err := c.client().Reopen(ctx, c.unit, c.month, c.kind); err != nil {
		return c.fail(err)
	}
	fmt.Fprintf(c.out, "Reopened %s %s for unit %s\n", c.kind, c.month, c.unit)
	return subcommands.ExitSuccess
}

type heatmapCmd struct {
	*env
	scope Scope
	raw   bool
}

func (*heatmapCmd) Name() string     { return "heatmap" }
func (*heatmapCmd) Synopsis() string { return "display the unit health heatmap" }
func (*heatmapCmd) Usage() string {
	return `ledgerctl heatmap [-from <date>] [-to <date>] [-program <id>] [-unit <id>] [-md]

  Displays every unit in scope with its indicator bands.
`
}

func (c *heatmapCmd) SetFlags(f *flag.FlagSet) {
	scopeFlags(f, &c.scope)
	f.BoolVar(&c.raw, "md", false, "print markdown without terminal styling")
}

func (c *heatmapCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	h, err := c.client().Heatmap(ctx, c.scope)
	if err != nil {
		return c.fail(err)
	}
	if err := printMarkdown(c.out, HeatmapMarkdown(h), c.raw); err != nil {
		return c.fail(err)
	}
	return subcommands.ExitSuccess
}

type overviewCmd struct {
	*env
	scope Scope
	raw   bool
}

func (*overviewCmd) Name() string     { return "overview" }
func (*overviewCmd) Synopsis() string { return "display the portfolio health and finance summary" }
func (*overviewCmd) Usage() string {
	return `ledgerctl overview [-from <date>] [-to <date>] [-program <id>] [-unit <id>] [-md]

  Displays unit counts by health, the finance KPIs and the per-indicator
  category split.
`
}

func (c *overviewCmd) SetFlags(f *flag.FlagSet) {
	scopeFlags(f, &c.scope)
	f.BoolVar(&c.raw, "md", false, "print markdown without terminal styling")
}

func (c *overviewCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	cl := c.client()
	g, gctx := errgroup.WithContext(ctx)

	var overview dto.OverviewResponse
	var kpis dto.KPIResponse
	g.Go(func() (err error) {
		overview, err = cl.CategoryHealth(gctx, c.scope)
		return err
	})
	g.Go(func() (err error) {
		kpis, err = cl.KPIs(gctx, c.scope)
		return err
	})
	if err := g.Wait(); err != nil {
		return c.fail(err)
	}
	if err := printMarkdown(c.out, OverviewMarkdown(overview, kpis), c.raw); err != nil {
		return c.fail(err)
	}
	return subcommands.ExitSuccess
}
