// marc selects the most representative conformers from an xyz ensemble.
//
// Usage:
//
//	marc -i ensemble.xyz [-c kmeans] [-m ewrmsd] [-n 0] [-ewin -1] [-v 1] [-pm 0]
//
// The input is either one xyz trajectory or several single-frame xyz files
// (repeat -i). Selected conformers are written next to the input as
// <basename>_selected_NN.xyz.
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/dsvatunek/marc"
)

type inputList []string

func (l *inputList) String() string     { return strings.Join(*l, ",") }
func (l *inputList) Set(v string) error { *l = append(*l, v); return nil }

// settings mirrors the command-line flags for the optional YAML settings
// file; flags given on the command line win over the file.
type settings struct {
	Cluster      string   `yaml:"cluster"`
	Metric       string   `yaml:"metric"`
	NumClusters  int      `yaml:"n_clusters"`
	EnergyWindow *float64 `yaml:"ewin"`
	Workers      int      `yaml:"workers"`
	Seed         int64    `yaml:"seed"`
	KeepH        bool     `yaml:"keep_hydrogens"`
}

var (
	flagInputs  inputList
	flagCluster = flag.String("c", "kmeans", "clustering algorithm: kmeans, agglomerative or affprop")
	flagMetric  = flag.String("m", "ewrmsd", "dissimilarity metric: rmsd, erel, da, ewrmsd, ewda or mix")
	flagN       = flag.Int("n", 0, "number of clusters (0 = select automatically)")
	flagEwin    = flag.Float64("ewin", -1, "energy window for the acceptance filter (negative = off)")
	flagVerb    = flag.Int("v", 1, "verbosity level")
	flagPlot    = flag.Int("pm", 0, "plot mode; > 0 writes dendrogram text files per metric")
	flagSeed    = flag.Int64("seed", 0, "random seed (0 = clock)")
	flagWorkers = flag.Int("w", 0, "worker goroutines (0 = all CPUs)")
	flagKeepH   = flag.Bool("keeph", false, "keep hydrogen atoms when comparing geometries")
	flagConf    = flag.String("conf", "", "optional YAML settings file")
	flagOutDir  = flag.String("o", ".", "output directory for selected conformers")
)

func main() {
	flag.Usage = usage
	flag.Var(&flagInputs, "i", "input xyz file; repeat for separate single-conformer files")
	flag.Parse()

	if *flagConf != "" {
		applySettingsFile(*flagConf)
	}

	if len(flagInputs) == 0 {
		usage()
	}

	ens, basename := loadEnsemble(flagInputs)
	if !*flagKeepH {
		ens = ens.StripHydrogens()
	}
	if *flagVerb > 0 {
		fmt.Printf("marc: loaded %d conformers (%d atoms compared)\n", len(ens), ens[0].NumAtoms())
	}

	cfg := marc.DefaultConfig()
	cfg.Algorithm = *flagCluster
	cfg.Metric = *flagMetric
	cfg.NumClusters = *flagN
	cfg.EnergyWindow = *flagEwin
	cfg.Seed = *flagSeed
	cfg.Workers = *flagWorkers
	if *flagPlot > 0 {
		cfg.Renderer = fileDendrograms{dir: *flagOutDir}
	}

	sel, err := marc.Select(ens, cfg)
	if err != nil {
		fatalf("marc: %s", err)
	}

	if *flagVerb > 0 {
		fmt.Printf("marc: %d clusters, %d representatives selected\n",
			sel.Partition.NumClusters(), len(sel.Representatives))
		if *flagVerb > 1 {
			for c, members := range sel.Partition.Clusters {
				fmt.Printf("  cluster %d: %d members, representative %d\n",
					c, len(members), sel.Partition.Representatives[c])
			}
		}
	}

	paths, err := marc.WriteRepresentatives(*flagOutDir, basename, ens, sel.Representatives)
	if err != nil {
		fatalf("marc: %s", err)
	}
	for _, p := range paths {
		fmt.Println(p)
	}
}

func loadEnsemble(inputs []string) (marc.Ensemble, string) {
	if len(inputs) == 1 {
		ens, err := marc.ReadXYZFile(inputs[0])
		if err != nil {
			fatalf("marc: %s", err)
		}
		return ens, baseOf(inputs[0])
	}
	ens, err := marc.ReadXYZFiles(inputs)
	if err != nil {
		fatalf("marc: %s", err)
	}
	return ens, baseOf(inputs[0])
}

func baseOf(path string) string {
	return strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
}

// applySettingsFile loads YAML settings and applies them underneath any flags
// set explicitly on the command line.
func applySettingsFile(path string) {
	data, err := os.ReadFile(path)
	if err != nil {
		fatalf("marc: reading settings file: %s", err)
	}
	var s settings
	if err := yaml.Unmarshal(data, &s); err != nil {
		fatalf("marc: parsing settings file '%s': %s", path, err)
	}

	set := make(map[string]bool)
	flag.Visit(func(f *flag.Flag) { set[f.Name] = true })

	if s.Cluster != "" && !set["c"] {
		*flagCluster = s.Cluster
	}
	if s.Metric != "" && !set["m"] {
		*flagMetric = s.Metric
	}
	if s.NumClusters != 0 && !set["n"] {
		*flagN = s.NumClusters
	}
	if s.EnergyWindow != nil && !set["ewin"] {
		*flagEwin = *s.EnergyWindow
	}
	if s.Workers != 0 && !set["w"] {
		*flagWorkers = s.Workers
	}
	if s.Seed != 0 && !set["seed"] {
		*flagSeed = s.Seed
	}
	if s.KeepH && !set["keeph"] {
		*flagKeepH = true
	}
}

// fileDendrograms writes each metric's dendrogram as
// <dir>/<label>_dendrogram.txt.
type fileDendrograms struct {
	dir string
}

func (f fileDendrograms) RenderDendrogram(rows [][4]float64, label string) error {
	path := filepath.Join(f.dir, label+"_dendrogram.txt")
	out, err := os.Create(path)
	if err != nil {
		return err
	}
	defer out.Close()
	return marc.TextDendrogram{W: out}.RenderDendrogram(rows, label)
}

func usage() {
	fmt.Fprintf(os.Stderr, "Usage: %s -i ensemble.xyz [flags]\n", filepath.Base(os.Args[0]))
	flag.PrintDefaults()
	os.Exit(1)
}

func fatalf(format string, v ...interface{}) {
	fmt.Fprintf(os.Stderr, format+"\n", v...)
	os.Exit(1)
}
