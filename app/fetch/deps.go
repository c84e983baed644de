package fetch

import (
	"github.com/lysyi3m/libria-client/app/notify"
	"github.com/lysyi3m/libria-client/app/release"
	"github.com/lysyi3m/libria-client/app/slots"
	"github.com/lysyi3m/libria-client/app/state"
)

// Deps are the collaborators shared by every orchestrator.
type Deps struct {
	Transformer       *release.Transformer
	Assets            AssetFetcher
	Slots             *slots.Manager
	Stores            *state.Stores
	Sink              notify.Sink
	PosterConcurrency int
}

func (d Deps) withDefaults() Deps {
	if d.Transformer == nil {
		d.Transformer = release.NewTransformer(nil, nil)
	}
	if d.Slots == nil {
		d.Slots = slots.NewManager()
	}
	if d.Stores == nil {
		d.Stores = state.NewStores()
	}
	if d.Sink == nil {
		d.Sink = notify.LogSink{}
	}
	if d.PosterConcurrency == 0 {
		d.PosterConcurrency = DefaultPosterConcurrency
	}
	return d
}
