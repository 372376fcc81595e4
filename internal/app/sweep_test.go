package app

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/iliyamo/csvboard/internal/repository"
)

func TestSweepSessions_RunsAtStartup(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM sessions WHERE expires_at < ?")).
		WithArgs(sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 2))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		sweepSessions(ctx, repository.NewSessionRepo(db), zap.NewNop())
		close(done)
	}()

	assert.Eventually(t, func() bool { return mock.ExpectationsWereMet() == nil },
		2*time.Second, 10*time.Millisecond)
	cancel()
	<-done
}
