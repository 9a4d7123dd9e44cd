package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/ROYA-Venture-Studio/taotter-api-sub000/handlers"
	"github.com/ROYA-Venture-Studio/taotter-api-sub000/logging"
	"github.com/ROYA-Venture-Studio/taotter-api-sub000/middleware"
	"github.com/ROYA-Venture-Studio/taotter-api-sub000/repositories"
	"github.com/ROYA-Venture-Studio/taotter-api-sub000/services"
	"github.com/ROYA-Venture-Studio/taotter-api-sub000/utils"

	"github.com/gorilla/mux"
	"github.com/joho/godotenv"
	"github.com/sony/gobreaker"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// createSprintQuestionnaireIndex enforces one sprint per questionnaire.
func createSprintQuestionnaireIndex(collection *mongo.Collection) error {
	indexModel := mongo.IndexModel{
		Keys:    bson.M{"questionnaireId": 1},
		Options: options.Index().SetUnique(true),
	}
	_, err := collection.Indexes().CreateOne(context.TODO(), indexModel)
	if err != nil {
		return fmt.Errorf("failed to create unique index on sprint questionnaireId: %v", err)
	}
	return nil
}

// createBoardSprintIndex enforces one live board per sprint. The partial
// filter keeps archived boards out so a sprint can get a fresh board after
// its old one is retired.
func createBoardSprintIndex(collection *mongo.Collection) error {
	indexModel := mongo.IndexModel{
		Keys: bson.M{"sprintId": 1},
		Options: options.Index().
			SetUnique(true).
			SetPartialFilterExpression(bson.M{"archived": false}),
	}
	_, err := collection.Indexes().CreateOne(context.TODO(), indexModel)
	if err != nil {
		return fmt.Errorf("failed to create unique index on board sprintId: %v", err)
	}
	return nil
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func main() {
	logging.InitLogger()
	logging.Logger.Info("Event ID: SERVICE_START, Description: Starting Backoffice Service...")

	if err := godotenv.Load(".env"); err != nil {
		logging.Logger.Warnf("Event ID: ENV_LOAD_ERROR, Description: Error loading .env file: %v", err)
	}

	mongoURI := os.Getenv("MONGO_URI")
	mongoDBName := os.Getenv("MONGO_DB_NAME")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(mongoURI))
	if err != nil {
		logging.Logger.Fatalf("Event ID: DB_CONNECTION_FAILED, Description: Database connection for MongoDB failed: %v", err)
	}
	defer client.Disconnect(ctx)

	if err := client.Ping(ctx, nil); err != nil {
		logging.Logger.Fatalf("Event ID: DB_PING_FAILED, Description: MongoDB connection ping error: %v", err)
	}
	logging.Logger.Infof("Event ID: DB_CONNECTED, Description: Successfully connected to MongoDB at %s.", mongoURI)

	db := client.Database(mongoDBName)
	questionnairesCollection := db.Collection("questionnaires")
	sprintsCollection := db.Collection("sprints")
	boardsCollection := db.Collection("boards")
	tasksCollection := db.Collection("tasks")

	if err := createSprintQuestionnaireIndex(sprintsCollection); err != nil {
		logging.Logger.Fatalf("Event ID: DB_INDEX_FAILED, Description: %v", err)
	}
	if err := createBoardSprintIndex(boardsCollection); err != nil {
		logging.Logger.Fatalf("Event ID: DB_INDEX_FAILED, Description: %v", err)
	}

	eventRepo, err := repositories.NewEventRepo(logging.Logger)
	if err != nil {
		logging.Logger.Fatalf("Event ID: CASSANDRA_INIT_FAILED, Description: Failed to initialize event repository: %v", err)
	}
	defer eventRepo.CloseSession()
	eventRepo.CreateTable()

	httpClient := utils.NewHTTPClient()
	mailerBreaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "mailer-cb",
		MaxRequests: 1,
		Timeout:     5 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures > 3
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logging.Logger.Infof("Event ID: CIRCUIT_BREAKER_STATE_CHANGE, Description: Circuit Breaker '%s' changed from '%s' to '%s'", name, from.String(), to.String())
		},
	})
	mailer := services.NewMailerClient(os.Getenv("MAILER_URL"), httpClient, mailerBreaker)

	questionnaireService := services.NewQuestionnaireService(questionnairesCollection, mailer)
	sprintService := services.NewSprintService(sprintsCollection, questionnairesCollection, mailer)
	boardService := services.NewBoardService(boardsCollection, sprintsCollection)
	taskService := services.NewTaskService(tasksCollection, boardsCollection, sprintsCollection, eventRepo, mailer)

	questionnaireHandler := handlers.NewQuestionnaireHandler(questionnaireService)
	sprintHandler := handlers.NewSprintHandler(sprintService)
	boardHandler := handlers.NewBoardHandler(boardService, eventRepo)
	taskHandler := handlers.NewTaskHandler(taskService)

	r := mux.NewRouter()

	// Intake submissions are open to anonymous traffic; a bearer token, when
	// present, attributes the questionnaire to the logged-in startup.
	r.Handle("/api/questionnaires",
		middleware.OptionalJWTAuthMiddleware(http.HandlerFunc(questionnaireHandler.SubmitQuestionnaire))).Methods(http.MethodPost)

	api := r.PathPrefix("/api").Subrouter()
	api.Use(middleware.JWTAuthMiddleware)

	api.HandleFunc("/questionnaires", questionnaireHandler.ListQuestionnaires).Methods(http.MethodGet)
	api.HandleFunc("/questionnaires/link", questionnaireHandler.LinkQuestionnaire).Methods(http.MethodPost)
	api.HandleFunc("/questionnaires/{questionnaireId}", questionnaireHandler.GetQuestionnaire).Methods(http.MethodGet)
	api.HandleFunc("/questionnaires/{questionnaireId}", questionnaireHandler.UpdateQuestionnaire).Methods(http.MethodPut)
	api.HandleFunc("/questionnaires/{questionnaireId}/review", questionnaireHandler.ReviewQuestionnaire).Methods(http.MethodPost)

	api.HandleFunc("/sprints", sprintHandler.CreateSprint).Methods(http.MethodPost)
	api.HandleFunc("/sprints", sprintHandler.ListSprints).Methods(http.MethodGet)
	api.HandleFunc("/sprints/{sprintId}", sprintHandler.GetSprint).Methods(http.MethodGet)
	api.HandleFunc("/sprints/{sprintId}/select-package", sprintHandler.SelectPackage).Methods(http.MethodPost)
	api.HandleFunc("/sprints/{sprintId}/documents", sprintHandler.SubmitDocuments).Methods(http.MethodPost)
	api.HandleFunc("/sprints/{sprintId}/meeting", sprintHandler.ScheduleMeeting).Methods(http.MethodPost)
	api.HandleFunc("/sprints/{sprintId}/status", sprintHandler.SetStatus).Methods(http.MethodPost)
	api.HandleFunc("/sprints/{sprintId}/verify-payment", sprintHandler.VerifyPayment).Methods(http.MethodPost)
	api.HandleFunc("/sprints/{sprintId}/team", sprintHandler.AssignTeam).Methods(http.MethodPut)
	api.HandleFunc("/sprints/{sprintId}/milestones", sprintHandler.UpdateMilestones).Methods(http.MethodPut)
	api.HandleFunc("/sprints/{sprintId}/board", boardHandler.GetBoardForSprint).Methods(http.MethodGet)

	api.HandleFunc("/boards/{boardId}", boardHandler.GetBoard).Methods(http.MethodGet)
	api.HandleFunc("/boards/{boardId}", boardHandler.ArchiveBoard).Methods(http.MethodDelete)
	api.HandleFunc("/boards/{boardId}/columns", boardHandler.AddColumn).Methods(http.MethodPost)
	api.HandleFunc("/boards/{boardId}/columns/{columnId}", boardHandler.ArchiveColumn).Methods(http.MethodDelete)
	api.HandleFunc("/boards/{boardId}/members", boardHandler.AddMember).Methods(http.MethodPost)
	api.HandleFunc("/boards/{boardId}/events", boardHandler.GetBoardEvents).Methods(http.MethodGet)
	api.HandleFunc("/boards/{boardId}/tasks", taskHandler.CreateTask).Methods(http.MethodPost)
	api.HandleFunc("/boards/{boardId}/tasks", taskHandler.GetTasksByBoard).Methods(http.MethodGet)

	api.HandleFunc("/tasks/{taskId}", taskHandler.GetTask).Methods(http.MethodGet)
	api.HandleFunc("/tasks/{taskId}", taskHandler.ArchiveTask).Methods(http.MethodDelete)
	api.HandleFunc("/tasks/{taskId}/move", taskHandler.MoveTask).Methods(http.MethodPost)
	api.HandleFunc("/tasks/{taskId}/comments", taskHandler.AddComment).Methods(http.MethodPost)

	corsRouter := enableCORS(r)

	serverPort := os.Getenv("SERVER_PORT")
	if serverPort == "" {
		serverPort = "8080"
	}
	serverAddress := fmt.Sprintf(":%s", serverPort)
	logging.Logger.Infof("Event ID: SERVER_START_INFO, Description: Server running on http://localhost%s", serverAddress)

	if err := http.ListenAndServe(serverAddress, corsRouter); err != nil {
		logging.Logger.Fatalf("Event ID: SERVER_FATAL_ERROR, Description: Server failed to start: %v", err)
	}
}
