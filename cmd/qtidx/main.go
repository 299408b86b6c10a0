// Command qtidx is a thin external-caller wrapper around the quadtree
// index. It is explicitly out of scope for the indexed core itself (see
// spec.md §1, "argument parsing... treated as an external caller") but is
// carried here as the ambient CLI surface a real repository in this
// lineage would ship, built from the same public Builder/FinalTree/
// Iterator API any other caller would use.
package main

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"

	flag "github.com/spf13/pflag"

	"qtidx/pkg/config"
	"qtidx/pkg/geom"
	"qtidx/pkg/persist"
	"qtidx/pkg/qtlog"
	"qtidx/pkg/quadtree"
	"qtidx/pkg/query"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	var err error
	switch os.Args[1] {
	case "build":
		err = runBuild(os.Args[2:])
	case "query":
		err = runQuery(os.Args[2:])
	default:
		usage()
		os.Exit(2)
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, "qtidx:", err)
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "usage: qtidx build -o <file> --region swx,swy,nex,ney [--config qtidx.toml]")
	fmt.Fprintln(os.Stderr, "       qtidx query <file> --rect swx,swy,nex,ney [--maxn N] [--fast] [--config qtidx.toml]")
}

func runBuild(args []string) error {
	fs := flag.NewFlagSet("build", flag.ExitOnError)
	out := fs.StringP("out", "o", "", "output file for the finalised tree")
	regionStr := fs.String("region", "", "bounding region as swx,swy,nex,ney")
	cfgPath := fs.String("config", "", "optional TOML file of builder defaults")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *out == "" || *regionStr == "" {
		return fmt.Errorf("build requires --out and --region")
	}

	region, err := parseRect(*regionStr)
	if err != nil {
		return err
	}
	cfg, err := config.Load(*cfgPath)
	if err != nil {
		return err
	}

	lg := qtlog.Default()
	b, err := quadtree.NewBuilder(region, cfg.MaxFill)
	if err != nil {
		return err
	}

	sc := bufio.NewScanner(os.Stdin)
	for sc.Scan() {
		fields := strings.Fields(sc.Text())
		if len(fields) == 0 {
			continue
		}
		if len(fields) != 3 {
			return fmt.Errorf("expected \"payload x y\", got %q", sc.Text())
		}
		payload, err := strconv.ParseUint(fields[0], 10, 64)
		if err != nil {
			return fmt.Errorf("bad payload %q: %w", fields[0], err)
		}
		x, err := strconv.ParseFloat(fields[1], 64)
		if err != nil {
			return fmt.Errorf("bad x %q: %w", fields[1], err)
		}
		y, err := strconv.ParseFloat(fields[2], 64)
		if err != nil {
			return fmt.Errorf("bad y %q: %w", fields[2], err)
		}
		if err := b.Insert(geom.Point{Payload: payload, X: x, Y: y}); err != nil {
			return err
		}
	}
	if err := sc.Err(); err != nil {
		return err
	}

	ft := quadtree.Finalize(b)
	lg.Debugf("finalised %d points into %s", ft.Len(), qtlog.Bytes(uint64(len(ft.Bytes()))))
	return persist.SaveLogged(ft, *out, lg)
}

func runQuery(args []string) error {
	fs := flag.NewFlagSet("query", flag.ExitOnError)
	rectStr := fs.String("rect", "", "query rectangle as swx,swy,nex,ney")
	maxn := fs.Int("maxn", 0, "cap on the number of results (0 = unlimited)")
	fast := fs.Bool("fast", false, "use the leaf-granular fast collector")
	cfgPath := fs.String("config", "", "optional TOML file of builder defaults")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return fmt.Errorf("query requires exactly one file argument")
	}
	if *rectStr == "" {
		return fmt.Errorf("query requires --rect")
	}

	q, err := parseRect(*rectStr)
	if err != nil {
		return err
	}

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		return err
	}

	lg := qtlog.Default()
	ft, err := persist.LoadLogged(fs.Arg(0), cfg.ChunkSize, lg)
	if err != nil {
		return err
	}

	var results []geom.Point
	if *fast {
		results = query.CollectArrayFast(ft, q, *maxn)
	} else {
		results = query.CollectArray(ft, q, *maxn)
	}

	w := bufio.NewWriter(os.Stdout)
	defer w.Flush()
	for _, p := range results {
		fmt.Fprintf(w, "%d\t%g\t%g\n", p.Payload, p.X, p.Y)
	}
	return nil
}

func parseRect(s string) (geom.Rect, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 4 {
		return geom.Rect{}, fmt.Errorf("expected swx,swy,nex,ney, got %q", s)
	}
	var v [4]float64
	for i, p := range parts {
		f, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return geom.Rect{}, fmt.Errorf("bad coordinate %q: %w", p, err)
		}
		v[i] = f
	}
	return geom.Rect{SW: geom.Point2D{X: v[0], Y: v[1]}, NE: geom.Point2D{X: v[2], Y: v[3]}}, nil
}
