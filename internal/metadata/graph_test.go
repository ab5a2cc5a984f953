package metadata_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"metaforge/internal/metadata"
	"metaforge/internal/source"
)

// chainStore registers users -> sessions -> transactions.
func chainStore(t *testing.T) *metadata.MetadataStore {
	t.Helper()
	m := metadata.New()

	_, err := m.AddTable("users", usersTable(), metadata.WithPrimaryKey("user_id"))
	require.NoError(t, err)

	_, err = m.AddTable("sessions", sessionsTable(),
		metadata.WithPrimaryKey("session_id"),
		metadata.WithParent("users", "user_id"),
	)
	require.NoError(t, err)

	transactions := source.New("transactions",
		source.Column{Name: "transaction_id", Values: []string{"0", "1", "2"}},
		source.Column{Name: "session_id", Values: []string{"0", "1", "1"}},
		source.Column{Name: "amount", Values: []string{"9.99", "3.50", "12.00"}},
	)
	_, err = m.AddTable("transactions", transactions,
		metadata.WithPrimaryKey("transaction_id"),
		metadata.WithParent("sessions", "session_id"),
	)
	require.NoError(t, err)
	return m
}

func TestGraph_ChildrenAndParents(t *testing.T) {
	g := chainStore(t).Graph()

	assert.Equal(t, []string{"sessions"}, g.ChildrenOf("users"))
	assert.Equal(t, []string{"transactions"}, g.ChildrenOf("sessions"))
	assert.Empty(t, g.ChildrenOf("transactions"))

	assert.Equal(t, []string{"users"}, g.ParentsOf("sessions"))
	assert.Empty(t, g.ParentsOf("users"))
}

func TestGraph_ParentOf(t *testing.T) {
	g := chainStore(t).Graph()

	edge, ok := g.ParentOf("sessions", "user_id")
	require.True(t, ok)
	assert.Equal(t, "users", edge.Parent)
	assert.Equal(t, "user_id", edge.ParentField)

	_, ok = g.ParentOf("sessions", "device")
	assert.False(t, ok)
}

func TestGraph_Ancestors(t *testing.T) {
	g := chainStore(t).Graph()

	assert.Equal(t, []string{"sessions", "users"}, g.AncestorsOf("transactions"))
	assert.Equal(t, []string{"users"}, g.AncestorsOf("sessions"))
	assert.Empty(t, g.AncestorsOf("users"))
}

func TestGraph_TopoOrder(t *testing.T) {
	m := metadata.New()

	// Register the parent last so the topological order has to reorder.
	lookup := source.New("countries",
		source.Column{Name: "country_id", Values: []string{"0", "1"}},
	)
	_, err := m.AddTable("countries", lookup, metadata.WithPrimaryKey("country_id"))
	require.NoError(t, err)

	people := source.New("people",
		source.Column{Name: "person_id", Values: []string{"0", "1", "2"}},
		source.Column{Name: "country_id", Values: []string{"0", "1", "0"}},
	)
	_, err = m.AddTable("people", people,
		metadata.WithPrimaryKey("person_id"),
		metadata.WithParent("countries", "country_id"),
	)
	require.NoError(t, err)

	pets := source.New("pets",
		source.Column{Name: "pet_id", Values: []string{"0", "1"}},
		source.Column{Name: "person_id", Values: []string{"0", "2"}},
	)
	_, err = m.AddTable("pets", pets,
		metadata.WithPrimaryKey("pet_id"),
		metadata.WithParent("people", "person_id"),
	)
	require.NoError(t, err)

	order := m.Graph().TopoOrder()
	require.Len(t, order, 3)
	pos := make(map[string]int, len(order))
	for i, name := range order {
		pos[name] = i
	}
	assert.Less(t, pos["countries"], pos["people"])
	assert.Less(t, pos["people"], pos["pets"])
}

func TestGraph_IsDerivedView(t *testing.T) {
	m := chainStore(t).Graph()
	edges := m.Edges()
	require.Len(t, edges, 2)

	// Every edge must be backed by a reference on the child's descriptor.
	assert.Equal(t, metadata.Edge{
		Child: "sessions", ChildField: "user_id",
		Parent: "users", ParentField: "user_id",
	}, edges[0])
}
