package pipeline

import (
	"github.com/theirongolddev/demandcast/internal/config"
	"github.com/theirongolddev/demandcast/internal/forecast"
	"github.com/theirongolddev/demandcast/internal/model"
	"github.com/theirongolddev/demandcast/internal/source"
)

// Options selects how every forecast in a run is computed.
type Options struct {
	Model     forecast.Model
	Seed      *uint64
	LabelMode forecast.LabelMode
}

// OptionsFromConfig returns the options implied by the general config section.
func OptionsFromConfig(cfg config.Config) Options {
	return Options{
		Model:     cfg.General.Model(),
		Seed:      cfg.General.Seed,
		LabelMode: cfg.General.Labels(),
	}
}

// Engine builds a fresh engine for one forecast. A seeded engine is
// rebuilt per input so results do not depend on scheduling order.
func (o Options) Engine() *forecast.Engine {
	opts := []forecast.Option{forecast.WithLabelMode(o.LabelMode)}
	if o.Seed != nil {
		opts = append(opts, forecast.WithSeed(*o.Seed))
	}
	return forecast.New(opts...)
}

// ForecastDataset runs one dataset and wraps the result in a record ready
// for the history store.
func ForecastDataset(ds source.Dataset, opts Options) (model.ForecastRecord, error) {
	history := forecast.Parse(ds.CSV)
	res, err := opts.Engine().Run(history, opts.Model)
	if err != nil {
		return model.ForecastRecord{}, err
	}
	src := ds.Path
	if src == "" {
		src = ds.Name
	}
	return model.ForecastRecord{
		Source: src,
		Model:  opts.Model.String(),
		Seed:   opts.Seed,
		Rows:   len(history),
		Result: res,
	}, nil
}
