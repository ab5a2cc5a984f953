package dialect

import "testing"

func TestForDriver(t *testing.T) {
	cases := map[string]Dialect{
		"mysql":     &MysqlDialect{},
		"postgres":  &PostgresDialect{},
		"sqlserver": &MSSQLDialect{},
		"mssql":     &MSSQLDialect{},
		"oracle":    &OracleDialect{},
		"unknown":   &MysqlDialect{},
	}
	for driver, want := range cases {
		got := ForDriver(driver)
		if gotType, wantType := typeName(got), typeName(want); gotType != wantType {
			t.Errorf("ForDriver(%q) = %s, want %s", driver, gotType, wantType)
		}
	}
}

func typeName(d Dialect) string {
	switch d.(type) {
	case *MysqlDialect:
		return "mysql"
	case *PostgresDialect:
		return "postgres"
	case *MSSQLDialect:
		return "mssql"
	case *OracleDialect:
		return "oracle"
	}
	return "unknown"
}

func TestSampleQuery(t *testing.T) {
	base := "SELECT a, b FROM t"
	tests := []struct {
		dialect Dialect
		want    string
	}{
		{&MysqlDialect{}, "SELECT a, b FROM t LIMIT 5"},
		{&PostgresDialect{}, "SELECT a, b FROM t LIMIT 5"},
		{&MSSQLDialect{}, "SELECT TOP 5 a, b FROM t"},
		{&OracleDialect{}, "SELECT * FROM (SELECT a, b FROM t) WHERE ROWNUM <= 5"},
	}
	for _, tt := range tests {
		if got := tt.dialect.SampleQuery(base, 5); got != tt.want {
			t.Errorf("%s SampleQuery = %q, want %q", typeName(tt.dialect), got, tt.want)
		}
	}
}

func TestSchemaNameDefaults(t *testing.T) {
	if got := (&PostgresDialect{}).SchemaName(""); got != "public" {
		t.Errorf("postgres default schema = %q, want public", got)
	}
	if got := (&PostgresDialect{}).SchemaName("custom"); got != "custom" {
		t.Errorf("postgres explicit schema = %q, want custom", got)
	}
	if got := (&MysqlDialect{}).SchemaName("mydb"); got != "mydb" {
		t.Errorf("mysql schema = %q, want mydb", got)
	}
}

func TestNormalizeType(t *testing.T) {
	if got := (&PostgresDialect{}).NormalizeType("int4"); got != "int" {
		t.Errorf("postgres int4 = %q, want int", got)
	}
	if got := (&MSSQLDialect{}).NormalizeType("bit"); got != "boolean" {
		t.Errorf("mssql bit = %q, want boolean", got)
	}
	if got := (&OracleDialect{}).NormalizeType("NUMBER"); got != "integer" {
		t.Errorf("oracle NUMBER = %q, want integer", got)
	}
	if got := (&MysqlDialect{}).NormalizeType("VARCHAR"); got != "varchar" {
		t.Errorf("mysql VARCHAR = %q, want varchar", got)
	}
}
