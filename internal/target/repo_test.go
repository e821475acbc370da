package target_test

import (
	"os"
	"testing"

	"github.com/robgonnella/fleetprobe/internal/exception"
	"github.com/robgonnella/fleetprobe/internal/target"
	"github.com/robgonnella/fleetprobe/internal/test_util"
	"github.com/stretchr/testify/assert"
)

func TestTargetSqliteRepo(t *testing.T) {
	testDBFile := "target.db"

	defer func() {
		os.RemoveAll(testDBFile)
	}()

	db, err := test_util.GetDBConnection(testDBFile)

	if err != nil {
		t.Logf("failed to create test db: %s", err.Error())
		t.FailNow()
	}

	if err := test_util.Migrate(db, &target.TargetModel{}); err != nil {
		t.Logf("failed to migrate test db: %s", err.Error())
		t.FailNow()
	}

	repo := target.NewSqliteRepo(db)

	newTarget := &target.Target{
		Address:     "10.1.1.1",
		Port:        5989,
		Scheme:      "https",
		Principal:   "admin",
		Credential:  "secret",
		Namespace:   "root/cimv2",
		Company:     "acme",
		Product:     "array",
		ScanEnabled: true,
		Notify:      []string{"ops@acme.test"},
	}

	t.Run("Get returns record not found error", func(st *testing.T) {
		_, err := repo.Get(99)

		assert.Error(st, err)
		assert.Equal(st, exception.ErrRecordNotFound, err)
	})

	t.Run("rejects invalid target", func(st *testing.T) {
		_, err := repo.Add(&target.Target{Address: "10.1.1.1"})

		assert.ErrorIs(st, err, exception.ErrInvalidTarget)
	})

	t.Run("adds target", func(st *testing.T) {
		created, err := repo.Add(newTarget)

		assert.NoError(st, err)
		assert.NotZero(st, created.ID)

		newTarget.ID = created.ID

		assert.Equal(st, newTarget, created)
	})

	t.Run("gets target by id", func(st *testing.T) {
		found, err := repo.Get(newTarget.ID)

		assert.NoError(st, err)
		assert.Equal(st, newTarget, found)
	})

	t.Run("lists targets with filter", func(st *testing.T) {
		other, err := repo.Add(&target.Target{
			Address:     "10.1.1.2",
			Port:        5989,
			Principal:   "admin",
			Credential:  "secret",
			Company:     "globex",
			ScanEnabled: false,
		})

		assert.NoError(st, err)

		all, err := repo.List(nil)

		assert.NoError(st, err)
		assert.Equal(st, 2, len(all))
		assert.Equal(st, newTarget.ID, all[0].ID)

		enabled, err := repo.List(&target.Filter{EnabledOnly: true})

		assert.NoError(st, err)
		assert.Equal(st, 1, len(enabled))

		byCompany, err := repo.List(&target.Filter{Company: "globex"})

		assert.NoError(st, err)
		assert.Equal(st, 1, len(byCompany))
		assert.Equal(st, other.ID, byCompany[0].ID)

		byID, err := repo.List(&target.Filter{IDs: []int{other.ID}})

		assert.NoError(st, err)
		assert.Equal(st, 1, len(byID))
		assert.Equal(st, []string{}, byID[0].Notify)
	})

	t.Run("returns distinct credentials", func(st *testing.T) {
		_, err := repo.Add(&target.Target{
			Address:    "10.1.1.3",
			Port:       5988,
			Principal:  "guest",
			Credential: "guest",
		})

		assert.NoError(st, err)

		creds, err := repo.DistinctCredentials()

		assert.NoError(st, err)
		assert.Equal(st, []target.Credential{
			{Principal: "admin", Credential: "secret"},
			{Principal: "guest", Credential: "guest"},
		}, creds)
	})

	t.Run("updates target", func(st *testing.T) {
		toUpdate := *newTarget
		toUpdate.Product = "new product"

		updated, err := repo.Update(&toUpdate)

		assert.NoError(st, err)
		assert.Equal(st, "new product", updated.Product)
	})

	t.Run("removes target", func(st *testing.T) {
		err := repo.Remove(newTarget.ID)

		assert.NoError(st, err)

		found, err := repo.Get(newTarget.ID)

		assert.Nil(st, found)
		assert.Equal(st, exception.ErrRecordNotFound, err)

		err = repo.Remove(newTarget.ID)

		assert.Equal(st, exception.ErrRecordNotFound, err)
	})
}
