// Package demo fabricates the bundled demonstration dataset: three related
// tables (users → sessions → transactions) with realistic-looking values.
// It exists so the engine can be exercised end to end without a database;
// the engine itself never generates data.
package demo

import (
	"fmt"
	"strconv"
	"time"

	"github.com/brianvoe/gofakeit/v6"

	"metaforge/internal/metadata"
	"metaforge/internal/source"
)

const (
	userCount        = 10
	sessionCount     = 20
	transactionCount = 40
)

// Seed fixes the generator so repeated runs produce the same dataset.
const Seed = 42

var devices = []string{"mobile", "tablet", "pc"}
var systems = []string{"android", "ios", "windows", "linux", "macos"}

// Dataset returns the demo tables in dependency order: users, sessions,
// transactions.
func Dataset() []*source.Table {
	faker := gofakeit.New(Seed)

	users := source.New("users",
		source.Column{Name: "user_id", Values: sequence(userCount)},
		source.Column{Name: "country", Values: repeat(userCount, func() string { return faker.CountryAbr() })},
		source.Column{Name: "gender", Values: repeat(userCount, func() string { return faker.RandomString([]string{"M", "F"}) })},
		source.Column{Name: "age", Values: repeat(userCount, func() string { return strconv.Itoa(faker.Number(18, 70)) })},
	)

	sessions := source.New("sessions",
		source.Column{Name: "session_id", Values: sequence(sessionCount)},
		source.Column{Name: "user_id", Values: repeat(sessionCount, func() string { return strconv.Itoa(faker.Number(0, userCount-1)) })},
		source.Column{Name: "device", Values: repeat(sessionCount, func() string { return faker.RandomString(devices) })},
		source.Column{Name: "os", Values: repeat(sessionCount, func() string { return faker.RandomString(systems) })},
		source.Column{Name: "minutes", Values: repeat(sessionCount, func() string { return strconv.Itoa(faker.Number(1, 240)) })},
	)

	start := time.Date(2019, 1, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2019, 12, 31, 23, 59, 59, 0, time.UTC)
	transactions := source.New("transactions",
		source.Column{Name: "transaction_id", Values: sequence(transactionCount)},
		source.Column{Name: "session_id", Values: repeat(transactionCount, func() string { return strconv.Itoa(faker.Number(0, sessionCount-1)) })},
		source.Column{Name: "timestamp", Values: repeat(transactionCount, func() string {
			return faker.DateRange(start, end).Format("2006-01-02 15:04:05")
		})},
		source.Column{Name: "amount", Values: repeat(transactionCount, func() string {
			return strconv.FormatFloat(faker.Price(0.99, 999.99), 'f', 2, 64)
		})},
		source.Column{Name: "approved", Values: repeat(transactionCount, func() string { return strconv.FormatBool(faker.Bool()) })},
	)

	return []*source.Table{users, sessions, transactions}
}

// Store builds the metadata store for the demo dataset, keys and
// relationships included.
func Store() (*metadata.MetadataStore, error) {
	tables := Dataset()
	users, sessions, transactions := tables[0], tables[1], tables[2]

	m := metadata.New()
	if _, err := m.AddTable(users.Name, users, metadata.WithPrimaryKey("user_id")); err != nil {
		return nil, fmt.Errorf("failed to register %s: %w", users.Name, err)
	}
	if _, err := m.AddTable(sessions.Name, sessions,
		metadata.WithPrimaryKey("session_id"),
		metadata.WithParent("users", "user_id"),
	); err != nil {
		return nil, fmt.Errorf("failed to register %s: %w", sessions.Name, err)
	}
	if _, err := m.AddTable(transactions.Name, transactions,
		metadata.WithPrimaryKey("transaction_id"),
		metadata.WithParent("sessions", "session_id"),
	); err != nil {
		return nil, fmt.Errorf("failed to register %s: %w", transactions.Name, err)
	}
	return m, nil
}

func sequence(n int) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = strconv.Itoa(i)
	}
	return out
}

func repeat(n int, gen func() string) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = gen()
	}
	return out
}
