package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/AndikaHugaW/OXEN-AI-sub000/internal/constant"
	"github.com/AndikaHugaW/OXEN-AI-sub000/internal/dto"
	"github.com/AndikaHugaW/OXEN-AI-sub000/internal/entity"
	"github.com/AndikaHugaW/OXEN-AI-sub000/internal/pkg/mailer"
	"github.com/AndikaHugaW/OXEN-AI-sub000/internal/repository/memory"
	"github.com/AndikaHugaW/OXEN-AI-sub000/internal/repository/specification"
	"github.com/AndikaHugaW/OXEN-AI-sub000/internal/repository/unitofwork"
	"github.com/AndikaHugaW/OXEN-AI-sub000/internal/websocket"
	"github.com/AndikaHugaW/OXEN-AI-sub000/pkg/assistant"
	"github.com/AndikaHugaW/OXEN-AI-sub000/pkg/assistant/intent"
	"github.com/AndikaHugaW/OXEN-AI-sub000/pkg/assistant/pipeline"
	"github.com/AndikaHugaW/OXEN-AI-sub000/pkg/rag"
	"github.com/AndikaHugaW/OXEN-AI-sub000/pkg/store"

	"github.com/google/uuid"
)

// IAssistantService defines the assistant service interface
type IAssistantService interface {
	CreateSession(ctx context.Context, userId uuid.UUID, request *dto.CreateSessionRequest) (*dto.CreateSessionResponse, error)
	GetAllSessions(ctx context.Context, userId uuid.UUID) ([]*dto.GetAllSessionsResponse, error)
	GetChatHistory(ctx context.Context, userId uuid.UUID, sessionId uuid.UUID) ([]*dto.GetChatHistoryResponse, error)
	Ask(ctx context.Context, userId uuid.UUID, request *dto.AskRequest) (*dto.AskResponse, error)
	DeleteSession(ctx context.Context, userId uuid.UUID, sessionId uuid.UUID) error
	MailLetter(ctx context.Context, userId uuid.UUID, request *dto.SendLetterRequest) error
}

// assistantService coordinates persistence, retrieval and the answer pipeline
type assistantService struct {
	uowFactory   unitofwork.RepositoryFactory
	orchestrator *pipeline.Orchestrator
	retriever    *rag.Retriever
	sessionRepo  *memory.SessionRepository
	hub          *websocket.Hub // nil when running without streaming
	emailService mailer.IEmailService
	logger       *log.Logger
}

func NewAssistantService(
	uowFactory unitofwork.RepositoryFactory,
	orchestrator *pipeline.Orchestrator,
	retriever *rag.Retriever,
	sessionRepo *memory.SessionRepository,
	hub *websocket.Hub,
	emailService mailer.IEmailService,
) IAssistantService {
	return &assistantService{
		uowFactory:   uowFactory,
		orchestrator: orchestrator,
		retriever:    retriever,
		sessionRepo:  sessionRepo,
		hub:          hub,
		emailService: emailService,
		logger:       initPipelineLogger(),
	}
}

func initPipelineLogger() *log.Logger {
	logPath := filepath.Join(".", "logs", "assistant_pipeline.log")
	if err := os.MkdirAll(filepath.Dir(logPath), 0755); err != nil {
		log.Printf("Failed to create logs directory: %v", err)
	}
	file, err := os.OpenFile(logPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return log.New(os.Stdout, "[PIPELINE] ", log.LstdFlags)
	}
	return log.New(file, "", log.LstdFlags)
}

func (s *assistantService) CreateSession(ctx context.Context, userId uuid.UUID, request *dto.CreateSessionRequest) (*dto.CreateSessionResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	now := time.Now()

	title := request.Title
	if title == "" {
		title = "Percakapan baru"
	}

	chatSession := entity.ChatSession{
		Id:        uuid.New(),
		UserId:    userId,
		Title:     title,
		CreatedAt: now,
	}
	if err := uow.ChatSessionRepository().Create(ctx, &chatSession); err != nil {
		return nil, err
	}

	s.sessionRepo.Save(&store.Session{
		ID:     chatSession.Id.String(),
		UserID: userId.String(),
	})

	return &dto.CreateSessionResponse{Id: chatSession.Id}, nil
}

func (s *assistantService) GetAllSessions(ctx context.Context, userId uuid.UUID) ([]*dto.GetAllSessionsResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	sessions, err := uow.ChatSessionRepository().FindAll(ctx,
		specification.UserOwnedBy{UserID: userId},
		specification.OrderBy{Field: "created_at", Desc: true},
	)
	if err != nil {
		return nil, err
	}

	responses := make([]*dto.GetAllSessionsResponse, len(sessions))
	for i, sess := range sessions {
		responses[i] = &dto.GetAllSessionsResponse{
			Id:        sess.Id,
			Title:     sess.Title,
			LastMode:  sess.LastMode,
			CreatedAt: sess.CreatedAt,
			UpdatedAt: sess.UpdatedAt,
		}
	}
	return responses, nil
}

func (s *assistantService) GetChatHistory(ctx context.Context, userId uuid.UUID, sessionId uuid.UUID) ([]*dto.GetChatHistoryResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	if _, err := s.verifySession(ctx, uow, userId, sessionId); err != nil {
		return nil, err
	}

	messages, err := uow.ChatMessageRepository().FindAll(ctx,
		specification.ByChatSessionID{ChatSessionID: sessionId},
		specification.OrderBy{Field: "created_at", Desc: false},
	)
	if err != nil {
		return nil, err
	}

	responses := make([]*dto.GetChatHistoryResponse, len(messages))
	for i, msg := range messages {
		responses[i] = &dto.GetChatHistoryResponse{
			Id:        msg.Id,
			Role:      msg.Role,
			Content:   msg.Content,
			Mode:      msg.Mode,
			Chart:     msg.Chart,
			CreatedAt: msg.CreatedAt,
		}
	}
	return responses, nil
}

func (s *assistantService) Ask(ctx context.Context, userId uuid.UUID, request *dto.AskRequest) (*dto.AskResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	chatSession, err := s.verifySession(ctx, uow, userId, request.ChatSessionId)
	if err != nil {
		return nil, err
	}

	existing, err := uow.ChatMessageRepository().FindAll(ctx,
		specification.ByChatSessionID{ChatSessionID: request.ChatSessionId},
		specification.OrderBy{Field: "created_at", Desc: false},
	)
	if err != nil {
		return nil, err
	}

	// Sticky conversation state fills gaps the request leaves open
	sticky, hasSticky := s.sessionRepo.Get(request.ChatSessionId.String())
	view := request.View
	if view == "" && hasSticky {
		view = sticky.View
	}

	history := make([]assistant.Turn, len(existing))
	for i, msg := range existing {
		history[i] = assistant.Turn{Role: msg.Role, Content: msg.Content}
	}

	contextText := ""
	if s.retriever != nil {
		docs := s.retriever.Retrieve(ctx, uow, userId, request.Message, rag.DefaultConfig())
		contextText = rag.BuildContext(docs)
	}

	reqCtx := assistant.RequestContext{
		Message:         request.Message,
		History:         history,
		RequestedMode:   request.Mode,
		ActiveView:      view,
		ContextText:     contextText,
		WebSearch:       request.WebSearch,
		ImageGeneration: request.ImageGeneration,
		FileIDs:         request.FileIds,
		WantStream:      request.Stream,
		CanStream:       s.hub != nil,
	}

	opts := pipeline.AnswerOptions{}
	if s.hub != nil && request.Stream {
		opts.Sink = websocket.NewSessionSink(s.hub, userId, request.ChatSessionId.String())
	}

	env, err := s.orchestrator.Answer(ctx, reqCtx, opts)
	if err != nil {
		if s.hub != nil && request.Stream {
			s.hub.SendError(userId, request.ChatSessionId.String(), "Maaf, terjadi kesalahan saat memproses permintaan.")
		}
		return nil, err
	}

	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}
	defer uow.Rollback()

	now := time.Now()
	userMessage := entity.ChatMessage{
		Id:            uuid.New(),
		ChatSessionId: request.ChatSessionId,
		Role:          constant.ChatMessageRoleUser,
		Content:       request.Message,
		CreatedAt:     now,
	}
	if err := uow.ChatMessageRepository().Create(ctx, &userMessage); err != nil {
		return nil, err
	}

	modelMessage := entity.ChatMessage{
		Id:            uuid.New(),
		ChatSessionId: request.ChatSessionId,
		Role:          constant.ChatMessageRoleModel,
		Content:       env.Response,
		Mode:          string(env.Mode),
		Streamed:      env.Streamed,
		Rejected:      env.Rejected,
		Chart:         marshalVisualization(env),
		CreatedAt:     now,
	}
	if err := uow.ChatMessageRepository().Create(ctx, &modelMessage); err != nil {
		return nil, err
	}

	// Title the session after the first exchange
	if len(existing) == 0 {
		chatSession.Title = truncateTitle(request.Message)
	}
	chatSession.LastView = view
	chatSession.LastMode = string(env.Mode)
	if err := uow.ChatSessionRepository().Update(ctx, chatSession); err != nil {
		return nil, err
	}

	if err := uow.Commit(); err != nil {
		return nil, err
	}

	s.updateSticky(request.ChatSessionId, userId, view, env, request.Message)

	if env.Streamed && s.hub != nil {
		// Streamed clients already saw the tokens; push the final envelope
		// so they get the metadata too.
		s.hub.SendAnswer(userId, request.ChatSessionId.String(), env)
	}

	return &dto.AskResponse{
		ChatSessionId: request.ChatSessionId,
		SentId:        userMessage.Id,
		ReplyId:       modelMessage.Id,
		Answer:        env,
		CreatedAt:     now,
	}, nil
}

func (s *assistantService) DeleteSession(ctx context.Context, userId uuid.UUID, sessionId uuid.UUID) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	if _, err := s.verifySession(ctx, uow, userId, sessionId); err != nil {
		return err
	}

	if err := uow.Begin(ctx); err != nil {
		return err
	}
	defer uow.Rollback()

	if err := uow.ChatSessionRepository().Delete(ctx, sessionId); err != nil {
		return err
	}
	if err := uow.ChatMessageRepository().DeleteByChatSessionId(ctx, sessionId); err != nil {
		return err
	}

	s.sessionRepo.Delete(sessionId.String())

	return uow.Commit()
}

// MailLetter sends the most recent generated letter of the session by email.
func (s *assistantService) MailLetter(ctx context.Context, userId uuid.UUID, request *dto.SendLetterRequest) error {
	if s.emailService == nil {
		return fmt.Errorf("mailer is not configured")
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)

	if _, err := s.verifySession(ctx, uow, userId, request.ChatSessionId); err != nil {
		return err
	}

	letter, err := uow.ChatMessageRepository().FindOne(ctx,
		specification.ByChatSessionID{ChatSessionID: request.ChatSessionId},
		specification.Filter("role", constant.ChatMessageRoleModel),
		specification.Filter("mode", string(assistant.ModeLetterGenerator)),
		specification.OrderBy{Field: "created_at", Desc: true},
	)
	if err != nil {
		return err
	}
	if letter == nil {
		return fmt.Errorf("no generated letter found in this session")
	}

	return s.emailService.SendLetter(request.ToEmail, request.Subject, letter.Content)
}

func (s *assistantService) verifySession(ctx context.Context, uow unitofwork.UnitOfWork, userId, sessionId uuid.UUID) (*entity.ChatSession, error) {
	sess, err := uow.ChatSessionRepository().FindOne(ctx,
		specification.ByID{ID: sessionId},
		specification.UserOwnedBy{UserID: userId},
	)
	if err != nil {
		return nil, err
	}
	if sess == nil {
		return nil, fmt.Errorf("session not found or access denied")
	}
	return sess, nil
}

func (s *assistantService) updateSticky(sessionId, userId uuid.UUID, view string, env *assistant.AnswerEnvelope, message string) {
	sticky, ok := s.sessionRepo.Get(sessionId.String())
	if !ok {
		sticky = &store.Session{ID: sessionId.String(), UserID: userId.String()}
	}
	sticky.View = view
	sticky.Mode = string(env.Mode)
	sticky.LastQuery = message
	s.sessionRepo.Save(sticky)

	if symbols := intent.ExtractSymbols(message); len(symbols) > 0 {
		codes := make([]string, len(symbols))
		for i, sym := range symbols {
			codes[i] = sym.Code
		}
		s.sessionRepo.RememberSymbols(sessionId.String(), codes)
	}
}

// marshalVisualization stores whichever visualization the envelope carries,
// exactly as the client received it.
func marshalVisualization(env *assistant.AnswerEnvelope) json.RawMessage {
	var payload interface{}
	switch {
	case env.Chart != nil:
		payload = env.Chart
	case len(env.Charts) > 0:
		payload = env.Charts
	case env.Table != nil:
		payload = env.Table
	default:
		return nil
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return nil
	}
	return data
}

func truncateTitle(message string) string {
	runes := []rune(message)
	if len(runes) <= 50 {
		return message
	}
	return string(runes[:50]) + "…"
}
