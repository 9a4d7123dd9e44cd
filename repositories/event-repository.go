package repositories

import (
	"os"
	"time"

	"github.com/ROYA-Venture-Studio/taotter-api-sub000/models"

	"github.com/gocql/gocql"
	"github.com/sirupsen/logrus"
)

// EventRepo is the append-only realtime feed backing board and conversation
// topics. Delivery to subscribers happens outside this service; the repo
// only records well-formed event payloads.
type EventRepo struct {
	session *gocql.Session
	logger  *logrus.Logger
}

func NewEventRepo(logger *logrus.Logger) (*EventRepo, error) {
	db := os.Getenv("CASS_DB")
	if db == "" {
		db = "127.0.0.1"
	}

	cluster := gocql.NewCluster(db)
	cluster.Keyspace = "system"
	session, err := cluster.CreateSession()
	if err != nil {
		logger.Errorf("Event ID: CASSANDRA_CONNECT_FAILED, Description: %v", err)
		return nil, err
	}

	err = session.Query(
		`CREATE KEYSPACE IF NOT EXISTS backoffice
         WITH replication = {
             'class': 'SimpleStrategy',
             'replication_factor': 1
         }`).Exec()
	if err != nil {
		logger.Errorf("Event ID: CASSANDRA_KEYSPACE_FAILED, Description: Failed to create keyspace: %v", err)
		return nil, err
	}
	session.Close()

	cluster.Keyspace = "backoffice"
	cluster.Consistency = gocql.One
	session, err = cluster.CreateSession()
	if err != nil {
		logger.Errorf("Event ID: CASSANDRA_KEYSPACE_CONNECT_FAILED, Description: Failed to connect to backoffice keyspace: %v", err)
		return nil, err
	}

	logger.Info("Event ID: CASSANDRA_CONNECTED, Description: Connected to Cassandra backoffice keyspace.")
	return &EventRepo{
		session: session,
		logger:  logger,
	}, nil
}

func (er *EventRepo) CloseSession() {
	er.session.Close()
	er.logger.Info("Event ID: CASSANDRA_SESSION_CLOSED, Description: Cassandra session closed.")
}

// CreateTable creates the events table, partitioned by topic with newest
// entries first.
func (er *EventRepo) CreateTable() {
	err := er.session.Query(
		`CREATE TABLE IF NOT EXISTS events (
			id UUID,
			topic TEXT,
			event_type TEXT,
			payload TEXT,
			created_at TIMESTAMP,
			PRIMARY KEY ((topic), created_at, id)
		) WITH CLUSTERING ORDER BY (created_at DESC, id ASC)`).Exec()
	if err != nil {
		er.logger.Errorf("Event ID: CASSANDRA_TABLE_FAILED, Description: Failed to create events table: %v", err)
	}
}

// Publish appends one event to its topic. Callers treat failures as
// fire-and-forget: the error is logged here and must never roll back the
// primary operation.
func (er *EventRepo) Publish(event *models.Event) error {
	if event.ID == "" {
		event.ID = gocql.TimeUUID().String()
	}
	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now()
	}

	err := er.session.Query(
		`INSERT INTO events (id, topic, event_type, payload, created_at)
		 VALUES (?, ?, ?, ?, ?)`,
		event.ID, event.Topic, event.Type, event.Payload, event.CreatedAt,
	).Exec()
	if err != nil {
		er.logger.Errorf("Event ID: EVENT_PUBLISH_FAILED, Description: Failed to publish event to topic %s: %v", event.Topic, err)
		return err
	}
	return nil
}

// GetEventsByTopic returns the feed for one topic, newest first.
func (er *EventRepo) GetEventsByTopic(topic string) ([]models.Event, error) {
	query := `SELECT id, topic, event_type, payload, created_at
			  FROM events WHERE topic = ?`

	iter := er.session.Query(query, topic).Iter()
	var events []models.Event
	var event models.Event

	for iter.Scan(&event.ID, &event.Topic, &event.Type, &event.Payload, &event.CreatedAt) {
		events = append(events, event)
	}

	if err := iter.Close(); err != nil {
		er.logger.Errorf("Event ID: EVENT_FETCH_FAILED, Description: Failed to read events for topic %s: %v", topic, err)
		return nil, err
	}

	return events, nil
}
