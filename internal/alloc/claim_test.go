package alloc

import (
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// A helper function to create a mock database connection.
func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	gormDB, err := gorm.Open(postgres.New(postgres.Config{
		Conn: db,
	}), &gorm.Config{})
	require.NoError(t, err)

	return gormDB, mock
}

func TestClaimSeatGuardsCapacity(t *testing.T) {
	testCases := []struct {
		name            string
		rowsAffected    int64
		expectedClaimed bool
	}{
		{
			name:            "free seat, conditional update hits",
			rowsAffected:    1,
			expectedClaimed: true,
		},
		{
			// The guard and the increment are a single statement; a racing
			// claim on the last seat simply affects zero rows.
			name:            "room already full, conditional update misses",
			rowsAffected:    0,
			expectedClaimed: false,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			gormDB, mock := newMockDB(t)

			mock.ExpectBegin()
			mock.ExpectExec(`UPDATE "rooms" SET "current_occupancy"=current_occupancy \+ 1 WHERE id = \$1 AND current_occupancy < capacity`).
				WithArgs(int64(7)).
				WillReturnResult(sqlmock.NewResult(0, tc.rowsAffected))
			mock.ExpectCommit()

			var claimed bool
			err := gormDB.Transaction(func(tx *gorm.DB) error {
				var txErr error
				claimed, txErr = claimSeat(tx, 7)
				return txErr
			})

			assert.NoError(t, err)
			assert.Equal(t, tc.expectedClaimed, claimed)
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestReleaseSeatFloorsAtZero(t *testing.T) {
	gormDB, mock := newMockDB(t)

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE "rooms" SET "current_occupancy"=CASE WHEN current_occupancy > 0 THEN current_occupancy - 1 ELSE 0 END WHERE id = \$1`).
		WithArgs(int64(7)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := gormDB.Transaction(func(tx *gorm.DB) error {
		return releaseSeat(tx, 7)
	})

	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
