package protocol

import (
	"context"
	"errors"
	"fmt"
	"net/url"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/robgonnella/fleetprobe/internal/exception"
)

// PostgresConnector implements the Connector interface for postgres. The
// target namespace is used as the database name.
type PostgresConnector struct{}

// NewPostgresConnector returns a new instance of PostgresConnector
func NewPostgresConnector() *PostgresConnector {
	return &PostgresConnector{}
}

// Connect opens and authenticates a postgres connection
func (c *PostgresConnector) Connect(ctx context.Context, req Request) (Session, error) {
	database := req.Namespace

	if database == "" {
		database = "postgres"
	}

	timeout := req.timeout()

	connURL := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(req.Principal, req.Credential),
		Host:     req.HostPort(),
		Path:     "/" + database,
		RawQuery: fmt.Sprintf("connect_timeout=%d", int(timeout.Seconds())),
	}

	config, err := pgx.ParseConfig(connURL.String())

	if err != nil {
		return nil, fmt.Errorf("%w: %w", exception.ErrConnection, err)
	}

	config.ConnectTimeout = timeout

	conn, err := pgx.ConnectConfig(ctx, config)

	if err != nil {
		return nil, classifyPostgresError(err)
	}

	return &postgresSession{conn: conn}, nil
}

type postgresSession struct {
	conn *pgx.Conn
}

// HealthCheck runs a trivial query
func (s *postgresSession) HealthCheck(ctx context.Context) error {
	var one int

	if err := s.conn.QueryRow(ctx, "SELECT 1").Scan(&one); err != nil {
		return classifyPostgresError(err)
	}

	if one != 1 {
		return protocolError("unexpected query result %d", one)
	}

	return nil
}

func (s *postgresSession) Close() error {
	return s.conn.Close(context.Background())
}

func classifyPostgresError(err error) error {
	var pgErr *pgconn.PgError

	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "28P01", "28000":
			return authError(err)
		default:
			return protocolError("%s (%s)", pgErr.Message, pgErr.Code)
		}
	}

	if pgconn.Timeout(err) || isTimeout(err) {
		return fmt.Errorf("%w: %w", exception.ErrTimeout, err)
	}

	if isNetError(err) {
		return wrapNetError(err)
	}

	return protocolError("%s", err.Error())
}
