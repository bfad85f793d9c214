package main

import (
	"context"
	"flag"
	"fmt"
	"math/rand/v2"
	"os"
	"text/tabwriter"

	"github.com/joho/godotenv"

	nftx "github.com/Ashenafi-pixel/nft-experience-server"
	"github.com/Ashenafi-pixel/nft-experience-server/crate"
)

func main() {
	file := flag.String("file", "", "Path to crates YAML file")
	dataDir := flag.String("data-dir", "data", "Data directory holding crates.json")
	toDB := flag.Bool("db", false, "Also upsert crates into Postgres (DATABASE_URL)")
	simulate := flag.Int("simulate", 0, "Open each crate N times and compare observed odds with published odds")
	simSeed := flag.Uint64("sim-seed", 1, "Seed for -simulate")
	flag.Parse()

	if *file == "" {
		fmt.Fprintln(os.Stderr, "missing required -file argument")
		os.Exit(1)
	}
	_ = godotenv.Load(".env")

	if err := run(*file, *dataDir, *toDB, *simulate, *simSeed); err != nil {
		fmt.Fprintf(os.Stderr, "import failed: %v\n", err)
		os.Exit(1)
	}
}

func run(file, dataDir string, toDB bool, simulate int, simSeed uint64) error {
	configs, err := crate.LoadYAML(file)
	if err != nil {
		return err
	}
	catalog, err := crate.NewCatalog(configs)
	if err != nil {
		return err
	}

	store := crate.NewStore(dataDir)
	for i := range configs {
		if err := store.Register(&configs[i]); err != nil {
			return fmt.Errorf("register %s: %w", configs[i].ID, err)
		}
	}

	if toDB {
		db, err := nftx.GetDB(os.Getenv("DATABASE_URL"))
		if err != nil {
			return fmt.Errorf("connect db: %w", err)
		}
		if db == nil {
			return fmt.Errorf("DATABASE_URL is not set; cannot connect to DB")
		}
		for i := range configs {
			if err := crate.SaveToDB(context.Background(), db, &configs[i]); err != nil {
				return err
			}
		}
	}

	for _, id := range catalog.IDs() {
		cr, _ := catalog.Get(id)
		fmt.Printf("Imported crate %q (id=%s, items=%d)\n", cr.Name(), cr.ID(), len(cr.Items()))
		printOdds(cr, simulate, simSeed)
	}
	return nil
}

// printOdds prints published odds and, when rounds > 0, the share each item
// took over that many simulated openings.
func printOdds(cr *crate.Crate, rounds int, seed uint64) {
	counts := map[uint64]int{}
	if rounds > 0 {
		src := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
		for i := 0; i < rounds; i++ {
			counts[cr.Sample(src).ID]++
		}
	}
	rarity := cr.Rarity()
	tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	if rounds > 0 {
		fmt.Fprintln(tw, "  ITEM\tNAME\tWEIGHT\tODDS\tOBSERVED")
	} else {
		fmt.Fprintln(tw, "  ITEM\tNAME\tWEIGHT\tODDS")
	}
	for _, it := range cr.Items() {
		line := fmt.Sprintf("  %d\t%s\t%d\t%.2f%%", it.ID, it.Name, it.Weight, rarity[it.ID]*100)
		if rounds > 0 {
			line += fmt.Sprintf("\t%.2f%%", float64(counts[it.ID])*100/float64(rounds))
		}
		fmt.Fprintln(tw, line)
	}
	_ = tw.Flush()
}
