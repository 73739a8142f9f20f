package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"sort"

	"github.com/viant/embedknn/config"
	"github.com/viant/embedknn/dataset"
	"github.com/viant/embedknn/engine"
	"github.com/viant/embedknn/knn"
	"github.com/viant/embedknn/pipeline"
	"github.com/viant/embedknn/qdrant"
	"github.com/viant/embedknn/store"
	"github.com/viant/embedknn/vector"
	"go.uber.org/zap"
)

const usage = `usage: embedknn [-config path] <command> [args]

commands:
  import                                load the dataset into the store
  classify [-k N] [-top N] [-remote] q.csv  classify query feature rows
  report                                print the intra-class report
  list                                  list stored datasets with sample counts
  reindex                               rebuild the snapshot with the configured metric
  export features.csv categories.csv    write the stored embeddings as a CSV pair`

var errUsage = errors.New(usage)

const importBatch = 512

type app struct {
	cfg    *config.Config
	logger *zap.Logger
	out    io.Writer
}

func run(ctx context.Context, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("embedknn", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	cfgPath := fs.String("config", "", "path to YAML config (default $EMBEDKNN_CONFIG or ./embedknn.yaml)")
	if err := fs.Parse(args); err != nil {
		return errUsage
	}
	if fs.NArg() == 0 {
		return errUsage
	}

	var cfg *config.Config
	var err error
	if *cfgPath == "" {
		cfg, _, err = config.LoadDefault()
	} else {
		cfg, err = config.Load(*cfgPath)
	}
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	logger, err := newLogger(cfg.Log)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	a := &app{cfg: cfg, logger: logger, out: out}
	switch cmd, rest := fs.Arg(0), fs.Args()[1:]; cmd {
	case "import":
		return a.importDataset(ctx)
	case "classify":
		return a.classify(ctx, rest)
	case "report":
		return a.report(ctx)
	case "list":
		return a.list(ctx)
	case "reindex":
		return a.reindex(ctx)
	case "export":
		return a.export(ctx, rest)
	default:
		return fmt.Errorf("unknown command %q\n%w", cmd, errUsage)
	}
}

func newLogger(cfg config.LogConfig) (*zap.Logger, error) {
	level, err := zap.ParseAtomicLevel(cfg.Level)
	if err != nil {
		return nil, fmt.Errorf("log level: %w", err)
	}
	zc := zap.NewProductionConfig()
	if cfg.Development {
		zc = zap.NewDevelopmentConfig()
	}
	zc.Level = level
	return zc.Build()
}

func (a *app) metric() (vector.Metric, error) {
	return vector.ParseMetric(a.cfg.Metric)
}

func (a *app) pipeline() (*pipeline.Pipeline, error) {
	return a.cfg.Pipeline.Build()
}

func (a *app) openStore(ctx context.Context) (*store.Store, func(), error) {
	if err := engine.RegisterVectorFunctions(); err != nil {
		return nil, nil, err
	}
	db, err := engine.OpenWAL(a.cfg.Store.Path)
	if err != nil {
		return nil, nil, fmt.Errorf("open store %s: %w", a.cfg.Store.Path, err)
	}
	s, err := store.New(ctx, db, a.logger)
	if err != nil {
		_ = db.Close()
		return nil, nil, err
	}
	return s, func() { _ = db.Close() }, nil
}

func (a *app) loadRecords() (dataset.Records, error) {
	d := a.cfg.Dataset
	if !d.HasDataset() {
		return nil, errors.New("no dataset configured: set dataset.features and dataset.categories, dataset.json or dataset.dir")
	}
	cats := dataset.NewCategories(d.Names...)
	switch {
	case d.Features != "" && d.Categories != "":
		return dataset.LoadCSVPair(d.Features, d.Categories, cats)
	case d.JSON != "":
		return dataset.LoadJSON(d.JSON, cats)
	default:
		return dataset.LoadDir(d.Dir, cats)
	}
}

func (a *app) importDataset(ctx context.Context) error {
	records, err := a.loadRecords()
	if err != nil {
		return err
	}
	p, err := a.pipeline()
	if err != nil {
		return err
	}
	metric, err := a.metric()
	if err != nil {
		return err
	}
	var samples []knn.Sample
	batches := dataset.NewBatches(records, importBatch)
	for batch, ok := batches.Next(); ok; batch, ok = batches.Next() {
		extracted, err := batch.Records.Samples(p)
		if err != nil {
			return err
		}
		samples = append(samples, extracted...)
		a.logger.Debug("batch extracted", zap.Int("size", batch.Len()), zap.Int("total", len(samples)))
	}
	ref, err := knn.Build(samples, knn.WithMetric(metric))
	if err != nil {
		return err
	}

	// the mirror goes first so a Qdrant failure leaves the store as it was
	if addr := a.cfg.Qdrant.Address; addr != "" {
		bank, err := qdrant.Dial(addr, a.cfg.Qdrant.Collection, a.logger)
		if err != nil {
			return err
		}
		defer bank.Close()
		if err := bank.Replace(ctx, ref); err != nil {
			return err
		}
	}

	s, closeStore, err := a.openStore(ctx)
	if err != nil {
		return err
	}
	defer closeStore()
	id := a.cfg.Store.Dataset
	if err := s.Remove(ctx, id); err != nil {
		return err
	}
	if _, err := s.AddSamples(ctx, id, ref.Samples()); err != nil {
		return err
	}
	if err := s.SaveSnapshot(ctx, id, ref); err != nil {
		return err
	}
	a.logger.Info("dataset imported", zap.String("dataset", id), zap.Int("samples", ref.Len()), zap.Int("dim", ref.Dim()))
	fmt.Fprintf(a.out, "imported %d samples (%d labels, dim %d) into %s\n", ref.Len(), len(ref.Labels()), ref.Dim(), id)
	return nil
}

// referenceSet returns the saved snapshot when it was built with the
// configured metric. A missing or stale snapshot is reindexed first.
func (a *app) referenceSet(ctx context.Context) (*knn.ReferenceSet, error) {
	metric, err := a.metric()
	if err != nil {
		return nil, err
	}
	s, closeStore, err := a.openStore(ctx)
	if err != nil {
		return nil, err
	}
	defer closeStore()
	id := a.cfg.Store.Dataset
	ref, err := s.LoadSnapshot(ctx, id)
	switch {
	case err == nil && ref.Metric().String() == metric.String():
		return ref, nil
	case err == nil:
		a.logger.Warn("snapshot metric differs from config, reindexing",
			zap.String("dataset", id), zap.Stringer("snapshot", ref.Metric()), zap.Stringer("config", metric))
	case errors.Is(err, store.ErrSnapshotNotFound):
		a.logger.Warn("snapshot missing, reindexing", zap.String("dataset", id))
	default:
		return nil, err
	}
	if _, err := s.Reindex(ctx, id, knn.WithMetric(metric)); err != nil {
		return nil, err
	}
	return s.LoadSnapshot(ctx, id)
}

func (a *app) classify(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("classify", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	k := fs.Int("k", a.cfg.K, "neighbours voting on the label")
	top := fs.Int("top", a.cfg.Top, "ranking entries to print")
	remote := fs.Bool("remote", false, "rank against the Qdrant collection")
	if err := fs.Parse(args); err != nil || fs.NArg() != 1 {
		return errUsage
	}
	rows, err := dataset.LoadFeatures(fs.Arg(0))
	if err != nil {
		return err
	}
	p, err := a.pipeline()
	if err != nil {
		return err
	}
	queries, err := p.ExtractAll(rows)
	if err != nil {
		return err
	}

	var rankings []knn.Ranking
	if *remote {
		rankings, err = a.rankRemote(ctx, queries, max(*k, *top))
	} else {
		rankings, err = a.rankLocal(ctx, queries)
	}
	if err != nil {
		return err
	}
	for i, ranking := range rankings {
		fmt.Fprintf(a.out, "%d\t%s", i, knn.Vote(ranking, *k))
		for _, n := range ranking.Top(*top) {
			fmt.Fprintf(a.out, "\t%s:%g", n.Label, n.Distance)
		}
		fmt.Fprintln(a.out)
	}
	return nil
}

func (a *app) rankLocal(ctx context.Context, queries []vector.Embedding) ([]knn.Ranking, error) {
	ref, err := a.referenceSet(ctx)
	if err != nil {
		return nil, err
	}
	results, err := knn.ClassifyAll(ctx, queries, ref, a.cfg.Workers)
	if err != nil {
		return nil, err
	}
	out := make([]knn.Ranking, len(results))
	for i, r := range results {
		out[i] = r.Ranking
	}
	return out, nil
}

func (a *app) rankRemote(ctx context.Context, queries []vector.Embedding, limit int) ([]knn.Ranking, error) {
	if a.cfg.Qdrant.Address == "" {
		return nil, errors.New("-remote requires qdrant.address")
	}
	bank, err := qdrant.Dial(a.cfg.Qdrant.Address, a.cfg.Qdrant.Collection, a.logger)
	if err != nil {
		return nil, err
	}
	defer bank.Close()
	out := make([]knn.Ranking, len(queries))
	for i, q := range queries {
		if out[i], err = bank.Rank(ctx, q, limit); err != nil {
			return nil, fmt.Errorf("query %d: %w", i, err)
		}
	}
	return out, nil
}

func (a *app) report(ctx context.Context) error {
	ref, err := a.referenceSet(ctx)
	if err != nil {
		return err
	}
	rep, err := knn.ReportIntraClass(ref)
	if err != nil {
		return err
	}
	separated := rep.Separated()
	for _, label := range rep.Labels {
		fmt.Fprintf(a.out, "%s\trepresentative=%d\tseparated=%t\n", label, rep.Representatives[label], separated[label])
		for _, n := range rep.Rankings[label].Top(a.cfg.Top) {
			fmt.Fprintf(a.out, "\t%d\t%s\t%g\n", n.Index, n.Label, n.Distance)
		}
	}
	counts := make(map[string]int)
	for _, l := range ref.Samples() {
		counts[l.Label]++
	}
	names := make([]string, 0, len(counts))
	for name := range counts {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintf(a.out, "count\t%s\t%d\n", name, counts[name])
	}
	return nil
}

func (a *app) list(ctx context.Context) error {
	s, closeStore, err := a.openStore(ctx)
	if err != nil {
		return err
	}
	defer closeStore()
	ids, err := s.Datasets(ctx)
	if err != nil {
		return err
	}
	for _, id := range ids {
		n, err := s.Count(ctx, id)
		if err != nil {
			return fmt.Errorf("count %s: %w", id, err)
		}
		fmt.Fprintf(a.out, "%s\t%d\n", id, n)
	}
	return nil
}

func (a *app) reindex(ctx context.Context) error {
	metric, err := a.metric()
	if err != nil {
		return err
	}
	s, closeStore, err := a.openStore(ctx)
	if err != nil {
		return err
	}
	defer closeStore()
	id := a.cfg.Store.Dataset
	n, err := s.Reindex(ctx, id, knn.WithMetric(metric))
	if err != nil {
		return err
	}
	a.logger.Info("dataset reindexed", zap.String("dataset", id), zap.Int("samples", n), zap.Stringer("metric", metric))
	fmt.Fprintf(a.out, "reindexed %d samples in %s (%s)\n", n, id, metric)
	return nil
}

// export writes the stored embeddings, not the raw features, so a
// non-identity pipeline is not undone.
func (a *app) export(ctx context.Context, args []string) error {
	if len(args) != 2 {
		return errUsage
	}
	ref, err := a.referenceSet(ctx)
	if err != nil {
		return err
	}
	records := dataset.FromSamples(ref.Samples(), dataset.NewCategories(a.cfg.Dataset.Names...))
	if err := dataset.WriteCSVPair(args[0], args[1], records); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "exported %d samples to %s and %s\n", len(records), args[0], args[1])
	return nil
}
