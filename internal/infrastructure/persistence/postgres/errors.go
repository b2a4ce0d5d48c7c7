package postgres

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"net"
	"syscall"

	"github.com/lib/pq"

	"club-knowledge-api/internal/domain/repository"
)

// classify 将连接类错误标记为 repository.ErrUnavailable
func classify(err error) error {
	if err == nil || errors.Is(err, repository.ErrUnavailable) {
		return err
	}
	if isConnectionError(err) {
		return fmt.Errorf("%w: %w", repository.ErrUnavailable, err)
	}
	return err
}

func isConnectionError(err error) bool {
	if errors.Is(err, driver.ErrBadConn) || errors.Is(err, sql.ErrConnDone) {
		return true
	}
	if errors.Is(err, syscall.ECONNREFUSED) || errors.Is(err, syscall.ECONNRESET) {
		return true
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		// 08: connection exception, 57P: operator intervention, 28: 认证失败
		switch pqErr.Code.Class() {
		case "08", "28":
			return true
		case "57":
			return pqErr.Code != "57014" // query_canceled
		}
		return false
	}

	var netErr net.Error
	return errors.As(err, &netErr)
}
