package services

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"quick-route/internal/adapters/distance"
	"quick-route/internal/domain"
)

func TestBuildTimeMatrix(t *testing.T) {
	addrs := []string{"A", "B", "C"}
	places := line(addrs...)
	pairs := allPairs(addrs, 60, map[string]float64{"A|C": 200, "C|A": 30})
	provider := distance.NewMockProvider(places, pairs)

	m, err := BuildTimeMatrix(context.Background(), coordsOf(places), domain.Automobile, NewETACache(provider, 0), 2)
	require.NoError(t, err)
	require.NoError(t, m.Complete())

	assert.Equal(t, 3, m.Size())
	assert.Equal(t, 200.0, m.At(0, 2))
	assert.Equal(t, 30.0, m.At(2, 0))
	assert.Equal(t, 60.0, m.At(1, 2))
	for i := 0; i < 3; i++ {
		assert.True(t, math.IsInf(m.At(i, i), 1))
	}
	assert.Equal(t, 6, provider.ETACalls())
}

func TestBuildTimeMatrixUnreachablePair(t *testing.T) {
	addrs := []string{"A", "B"}
	places := line(addrs...)
	pairs := []distance.MockPair{
		{From: "A", To: "B", Seconds: 10},
		{From: "B", To: "A", NoRoute: true},
	}
	provider := distance.NewMockProvider(places, pairs)

	m, err := BuildTimeMatrix(context.Background(), coordsOf(places), domain.Walking, NewETACache(provider, 0), 0)
	require.NoError(t, err)

	assert.Equal(t, 10.0, m.At(0, 1))
	assert.True(t, math.IsInf(m.At(1, 0), 1))
}

func TestBuildTimeMatrixFailsWhole(t *testing.T) {
	addrs := []string{"A", "B", "C"}
	places := line(addrs...)
	provider := distance.NewMockProvider(places, allPairs(addrs, 60, nil))
	provider.ETAErr = errors.New("rate limited")

	m, err := BuildTimeMatrix(context.Background(), coordsOf(places), domain.Automobile, NewETACache(provider, 0), 0)
	require.Error(t, err)
	assert.Nil(t, m)
	assert.ErrorIs(t, err, domain.ErrService)
}

func TestTimeMatrixComplete(t *testing.T) {
	m := NewTimeMatrix(2)
	m.Set(0, 1, 5)

	err := m.Complete()
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrMatrixIncomplete)

	m.SetDuration(1, 0, domain.Unreachable)
	assert.NoError(t, m.Complete())
}

func TestNewTimeMatrixFromRowsRejectsRagged(t *testing.T) {
	_, err := NewTimeMatrixFromRows([][]float64{{0, 1}, {1}})
	assert.Error(t, err)
}
