package service

import (
	"context"
	"database/sql"
	"sync"
	"testing"

	"github.com/alexanderramin/panotour/internal/codec"
	"github.com/alexanderramin/panotour/internal/domain"
	"github.com/alexanderramin/panotour/internal/limits"
	"github.com/alexanderramin/panotour/internal/repository"
	"github.com/alexanderramin/panotour/internal/testutil"
	"github.com/stretchr/testify/require"
)

type recordingObserver struct {
	mu     sync.Mutex
	events []UseCaseEvent
}

func (o *recordingObserver) ObserveUseCase(_ context.Context, e UseCaseEvent) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.events = append(o.events, e)
}

func (o *recordingObserver) last() UseCaseEvent {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.events[len(o.events)-1]
}

type fixture struct {
	db    *sql.DB
	repo  repository.TourRepo
	obs   *recordingObserver
	lite  limits.Policy
	tours TourService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	database := testutil.NewTestDB(t)
	repo := repository.NewSQLiteTourRepo(database)
	obs := &recordingObserver{}
	lite := limits.MustPolicy(limits.TierLite)
	return &fixture{
		db:    database,
		repo:  repo,
		obs:   obs,
		lite:  lite,
		tours: NewTourService(repo, lite, obs),
	}
}

func (f *fixture) seed(t *testing.T, tours ...*domain.Tour) {
	t.Helper()
	for _, tour := range tours {
		require.NoError(t, f.repo.Save(context.Background(), tour))
	}
}

func exportDoc(t *testing.T, tours ...*domain.Tour) []byte {
	t.Helper()
	var (
		data []byte
		err  error
	)
	if len(tours) == 1 {
		data, err = codec.Export(tours[0])
	} else {
		data, err = codec.ExportCollection(tours)
	}
	require.NoError(t, err)
	return data
}
