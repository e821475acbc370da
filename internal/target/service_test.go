package target_test

import (
	"errors"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/robgonnella/fleetprobe/internal/exception"
	mock_target "github.com/robgonnella/fleetprobe/internal/mock/target"
	"github.com/robgonnella/fleetprobe/internal/target"
	"github.com/stretchr/testify/assert"
)

func TestTargetService(t *testing.T) {
	ctrl := gomock.NewController(t)

	defer ctrl.Finish()

	mockRepo := mock_target.NewMockRepo(ctrl)

	service := target.NewService(mockRepo)

	t1 := &target.Target{ID: 1, Address: "10.0.0.1", Port: 5989, ScanEnabled: true}
	t2 := &target.Target{ID: 2, Address: "10.0.0.1", Port: 5988}

	t.Run("builds address and port index", func(st *testing.T) {
		mockRepo.EXPECT().List(nil).Return([]*target.Target{t1, t2}, nil)

		index, err := service.Index()

		assert.NoError(st, err)
		assert.Equal(st, 2, len(index))
		assert.Equal(st, t1, index[target.Key("10.0.0.1", 5989)])
		assert.Equal(st, t2, index["10.0.0.1:5988"])
	})

	t.Run("returns index error", func(st *testing.T) {
		mockRepo.EXPECT().List(nil).Return(nil, errors.New("unavailable"))

		_, err := service.Index()

		assert.Error(st, err)
	})

	t.Run("disables target", func(st *testing.T) {
		found := *t1

		mockRepo.EXPECT().Get(1).Return(&found, nil)
		mockRepo.EXPECT().Update(gomock.Any()).DoAndReturn(func(tgt *target.Target) (*target.Target, error) {
			return tgt, nil
		})

		updated, err := service.SetScanEnabled(1, false)

		assert.NoError(st, err)
		assert.False(st, updated.ScanEnabled)
	})

	t.Run("adds and removes target", func(st *testing.T) {
		mockRepo.EXPECT().Add(t2).Return(t2, nil)
		mockRepo.EXPECT().Remove(2).Return(nil)

		added, err := service.Add(t2)

		assert.NoError(st, err)
		assert.Equal(st, t2, added)
		assert.NoError(st, service.Remove(2))
	})

	t.Run("delegates registry reads", func(st *testing.T) {
		creds := []target.Credential{{Principal: "admin", Credential: "secret"}}

		mockRepo.EXPECT().DistinctCredentials().Return(creds, nil)
		mockRepo.EXPECT().Get(1).Return(t1, nil)

		found, err := service.DistinctCredentials()

		assert.NoError(st, err)
		assert.Equal(st, creds, found)

		tgt, err := service.Get(1)

		assert.NoError(st, err)
		assert.Equal(st, t1, tgt)
	})

	t.Run("updates only the provided fields", func(st *testing.T) {
		found := target.Target{
			ID:          3,
			Address:     "10.0.0.3",
			Port:        5989,
			Scheme:      "https",
			Principal:   "admin",
			Credential:  "secret",
			Namespace:   "root/cimv2",
			ScanEnabled: true,
			Notify:      []string{"ops@example.com"},
		}

		mockRepo.EXPECT().Get(3).Return(&found, nil)
		mockRepo.EXPECT().Update(gomock.Any()).DoAndReturn(func(tgt *target.Target) (*target.Target, error) {
			return tgt, nil
		})

		updated, err := service.Update(3, target.Target{Port: 5988, Scheme: "http", Credential: "rotated"})

		assert.NoError(st, err)
		assert.Equal(st, 3, updated.ID)
		assert.Equal(st, "10.0.0.3", updated.Address)
		assert.Equal(st, 5988, updated.Port)
		assert.Equal(st, "http", updated.Scheme)
		assert.Equal(st, "admin", updated.Principal)
		assert.Equal(st, "rotated", updated.Credential)
		assert.Equal(st, "root/cimv2", updated.Namespace)
		assert.True(st, updated.ScanEnabled)
		assert.Equal(st, []string{"ops@example.com"}, updated.Notify)
	})

	t.Run("rejects invalid update", func(st *testing.T) {
		found := *t1

		mockRepo.EXPECT().Get(1).Return(&found, nil)

		_, err := service.Update(1, target.Target{Port: 70000})

		assert.ErrorIs(st, err, exception.ErrInvalidTarget)
	})
}
