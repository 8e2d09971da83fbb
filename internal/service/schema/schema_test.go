// file: internal/service/schema/schema_test.go

package schema

import (
	"DBTalk/internal/core/domain"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// -----------------------------------------------------------------------------
// 测试辅助
// -----------------------------------------------------------------------------

func col(name string, fks ...domain.ForeignKey) domain.ColumnSchema {
	return domain.ColumnSchema{Name: name, Type: "integer", Nullable: true, ForeignKeys: fks}
}

func fk(table, column string) domain.ForeignKey {
	return domain.ForeignKey{ReferencesTable: table, ReferencesColumn: column}
}

func table(cols ...domain.ColumnSchema) *domain.TableSchema {
	return &domain.TableSchema{Columns: cols, PrimaryKey: []string{"id"}}
}

// shopSchema 返回一个包含 10 张表的结构，足以触发裁剪
func shopSchema() *domain.UnifiedSchema {
	return &domain.UnifiedSchema{
		Source: domain.SourcePostgres,
		Tables: map[string]*domain.TableSchema{
			"users":      table(col("id"), col("email")),
			"orders":     table(col("id"), col("user_id", fk("users", "id"))),
			"products":   table(col("id"), col("title")),
			"payments":   table(col("id"), col("order_id", fk("orders", "id")), col("amount")),
			"contacts":   table(col("id"), col("email"), col("site_id", fk("warehouses", "id"))),
			"warehouses": table(col("id"), col("city")),
			"sessions":   table(col("id"), col("token")),
			"invoices":   table(col("id"), col("total")),
			"categories": table(col("id"), col("label")),
			"shipments":  table(col("id"), col("carrier")),
		},
	}
}

// -----------------------------------------------------------------------------
// Test: Prune
// -----------------------------------------------------------------------------

func TestPrune_SmallSchemaUnchanged(t *testing.T) {
	s := &domain.UnifiedSchema{
		Source: domain.SourceMongo,
		Tables: map[string]*domain.TableSchema{
			"a": table(col("id")),
			"b": table(col("id")),
			"c": table(col("id")),
			"d": table(col("id")),
			"e": table(col("id")),
		},
	}
	for _, q := range []string{"", "anything at all", "weather tomorrow"} {
		assert.Same(t, s, Prune(s, q))
	}
}

func TestPrune_UserEmails(t *testing.T) {
	s := shopSchema()
	got := Prune(s, "show me user emails")

	require.Contains(t, got.Tables, "users")
	// users 得分 185 但自身没有外键；orders 只命中 user_id 得 15 分
	assert.NotContains(t, got.Tables, "orders")
	// contacts 靠 email 列得 70 分，未达扩展阈值
	assert.Contains(t, got.Tables, "contacts")
	assert.NotContains(t, got.Tables, "warehouses")
	assert.Equal(t, domain.SourcePostgres, got.Source)
	assert.Same(t, s.Tables["users"], got.Tables["users"], "表定义应原样保留")
}

func TestPrune_ExactNameScoresAtLeast80(t *testing.T) {
	s := shopSchema()
	lowered := "list invoices"
	score := Score("invoices", s.Tables["invoices"], lowered, tokenize(lowered))
	assert.GreaterOrEqual(t, score, 80)

	got := Prune(s, "list invoices")
	assert.Contains(t, got.Tables, "invoices")
}

func TestPrune_HighScoreExpandsForeignKeys(t *testing.T) {
	got := Prune(shopSchema(), "show recent orders")
	assert.ElementsMatch(t, []string{"orders", "users"}, got.TableNames())
}

func TestPrune_LowScoreDoesNotExpand(t *testing.T) {
	got := Prune(shopSchema(), "email list")
	assert.ElementsMatch(t, []string{"contacts", "users"}, got.TableNames())
	assert.NotContains(t, got.Tables, "warehouses")
}

func TestPrune_SynonymsAccumulate(t *testing.T) {
	got := Prune(shopSchema(), "list accounts of members")
	assert.Equal(t, []string{"users"}, got.TableNames())
}

func TestPrune_NoMatchReturnsEmpty(t *testing.T) {
	got := Prune(shopSchema(), "weather forecast tomorrow")
	require.NotNil(t, got.Tables)
	assert.Empty(t, got.Tables)
}

func TestPrune_TopThreeWithAlphabeticalTies(t *testing.T) {
	s := &domain.UnifiedSchema{
		Source: domain.SourcePostgres,
		Tables: map[string]*domain.TableSchema{
			"alpha": table(col("id")),
			"beta":  table(col("id")),
			"gamma": table(col("id")),
			"delta": table(col("id")),
			"epsil": table(col("id")),
			"zeta":  table(col("id")),
		},
	}
	got := Prune(s, "alpha beta gamma delta")
	assert.ElementsMatch(t, []string{"alpha", "beta", "delta"}, got.TableNames())
}

// -----------------------------------------------------------------------------
// Test: Score
// -----------------------------------------------------------------------------

func TestScore(t *testing.T) {
	s := shopSchema()
	testCases := []struct {
		name     string
		table    string
		question string
		want     int
	}{
		// 60 单数形式 + 70 email + 30 token 命中表名 + 25 语义
		{name: "users 与 user emails", table: "users", question: "show me user emails", want: 185},
		// 15 token 命中 user_id
		{name: "orders 与 user emails", table: "orders", question: "show me user emails", want: 15},
		// 80 字面 + 60 单数 + 30 token + 25×2 语义 (order, orders)
		{name: "orders 字面命中", table: "orders", question: "show recent orders", want: 220},
		// 25 account + 25 member
		{name: "users 多个同义词", table: "users", question: "list accounts of members", want: 50},
		// 10 id 列
		{name: "id 列", table: "sessions", question: "by id", want: 10},
		{name: "无关", table: "warehouses", question: "weather forecast", want: 0},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			lowered := tc.question
			assert.Equal(t, tc.want, Score(tc.table, s.Tables[tc.table], lowered, tokenize(lowered)))
		})
	}
}

func TestTokenize(t *testing.T) {
	got := tokenize("can you show me the users' emails, for id 42?")
	assert.Equal(t, []string{"users", "emails"}, got)
}

// -----------------------------------------------------------------------------
// Test: Describe
// -----------------------------------------------------------------------------

func TestDescribe(t *testing.T) {
	s := &domain.UnifiedSchema{
		Source: domain.SourcePostgres,
		Tables: map[string]*domain.TableSchema{
			"users": {
				Columns: []domain.ColumnSchema{
					{Name: "id", Type: "integer", IsPrimaryKey: true},
					{Name: "email", Type: "text", Nullable: true},
				},
				PrimaryKey: []string{"id"},
			},
			"orders": {
				Columns: []domain.ColumnSchema{
					{Name: "user_id", Type: "integer", Nullable: true, ForeignKeys: []domain.ForeignKey{fk("users", "id")}},
				},
			},
		},
	}

	want := "Database Type: postgres\n" +
		"\nEntity: orders\nFields:\n" +
		"  - user_id (integer) [FK → users.id]\n" +
		"\nEntity: users\nFields:\n" +
		"  - id (integer) [PRIMARY KEY] [NOT NULL]\n" +
		"  - email (text)\n"
	assert.Equal(t, want, Describe(s))
}
