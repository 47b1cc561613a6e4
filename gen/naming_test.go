package gen_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/tabulagen/tabula/gen"
)

func TestTypeName(t *testing.T) {
	t.Parallel()
	tests := []struct {
		table, want string
	}{
		{"orders", "Order"},
		{"order_items", "OrderItem"},
		{"people", "Person"},
		{"user", "User"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, gen.TypeName(tt.table), tt.table)
	}
}

func TestExportedName(t *testing.T) {
	t.Parallel()
	tests := []struct {
		column, want string
	}{
		{"status", "Status"},
		{"created_at", "CreatedAt"},
		{"user_id", "UserID"},
		{"uuid", "UUID"},
		{"json_payload", "JSONPayload"},
		{"external_url", "ExternalURL"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, gen.ExportedName(tt.column), tt.column)
	}
}

func TestReceiver(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "o", gen.Receiver("Order"))
	assert.Equal(t, "x", gen.Receiver(""))
}

func TestPackageName(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "orderitems", gen.PackageName("order_items"))
	assert.Equal(t, "orders", gen.PackageName("orders"))
}
