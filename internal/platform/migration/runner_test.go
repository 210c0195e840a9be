// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package migration_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/taibuivan/yamdb/internal/platform/migration"
)

func TestPgx5DSN(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"postgres://u:p@db:5432/yamdb", "pgx5://u:p@db:5432/yamdb"},
		{"postgresql://u:p@db/yamdb?sslmode=disable", "pgx5://u:p@db/yamdb?sslmode=disable"},
		{"pgx5://u:p@db/yamdb", "pgx5://u:p@db/yamdb"},
		{"host=db user=u dbname=yamdb", "host=db user=u dbname=yamdb"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, migration.Pgx5DSN(tt.in))
		})
	}
}
