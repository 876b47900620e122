// FILE: internal/service/document_service.go
package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/AndikaHugaW/OXEN-AI-sub000/internal/dto"
	"github.com/AndikaHugaW/OXEN-AI-sub000/internal/entity"
	"github.com/AndikaHugaW/OXEN-AI-sub000/internal/repository/specification"
	"github.com/AndikaHugaW/OXEN-AI-sub000/internal/repository/unitofwork"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type IDocumentService interface {
	Create(ctx context.Context, userId uuid.UUID, request *dto.CreateDocumentRequest) (*dto.CreateDocumentResponse, error)
	GetAll(ctx context.Context, userId uuid.UUID) ([]dto.GetAllDocumentsResponse, error)
	Update(ctx context.Context, userId uuid.UUID, id uuid.UUID, request *dto.CreateDocumentRequest) error
	Delete(ctx context.Context, userId uuid.UUID, id uuid.UUID) error
}

type documentService struct {
	uowFactory       unitofwork.RepositoryFactory
	publisherService IPublisherService
}

func NewDocumentService(
	uowFactory unitofwork.RepositoryFactory,
	publisherService IPublisherService,
) IDocumentService {
	return &documentService{
		uowFactory:       uowFactory,
		publisherService: publisherService,
	}
}

func (c *documentService) Create(ctx context.Context, userId uuid.UUID, request *dto.CreateDocumentRequest) (*dto.CreateDocumentResponse, error) {
	uow := c.uowFactory.NewUnitOfWork(ctx)

	document := entity.Document{
		Id:        uuid.New(),
		UserId:    userId,
		Title:     request.Title,
		Content:   request.Content,
		MimeType:  request.MimeType,
		CreatedAt: time.Now(),
	}

	err := uow.DocumentRepository().Create(ctx, &document)
	if err != nil {
		return nil, err
	}

	if err := c.publishEmbedJob(ctx, document.Id); err != nil {
		return nil, err
	}

	return &dto.CreateDocumentResponse{
		Id: document.Id,
	}, nil
}

func (c *documentService) GetAll(ctx context.Context, userId uuid.UUID) ([]dto.GetAllDocumentsResponse, error) {
	uow := c.uowFactory.NewUnitOfWork(ctx)

	documents, err := uow.DocumentRepository().FindAll(ctx,
		specification.UserOwnedBy{UserID: userId},
		specification.OrderBy{Field: "created_at", Desc: true},
	)
	if err != nil {
		return nil, err
	}

	response := make([]dto.GetAllDocumentsResponse, 0, len(documents))
	for _, document := range documents {
		response = append(response, dto.GetAllDocumentsResponse{
			Id:        document.Id,
			Title:     document.Title,
			MimeType:  document.MimeType,
			CreatedAt: document.CreatedAt,
			UpdatedAt: document.UpdatedAt,
		})
	}

	return response, nil
}

func (c *documentService) Update(ctx context.Context, userId uuid.UUID, id uuid.UUID, request *dto.CreateDocumentRequest) error {
	uow := c.uowFactory.NewUnitOfWork(ctx)

	document, err := c.verifyOwnership(ctx, uow, userId, id)
	if err != nil {
		return err
	}

	now := time.Now()
	document.Title = request.Title
	document.Content = request.Content
	document.MimeType = request.MimeType
	document.UpdatedAt = &now

	if err := uow.DocumentRepository().Update(ctx, document); err != nil {
		return err
	}

	// Content changed, embeddings must be rebuilt
	return c.publishEmbedJob(ctx, document.Id)
}

func (c *documentService) Delete(ctx context.Context, userId uuid.UUID, id uuid.UUID) error {
	uow := c.uowFactory.NewUnitOfWork(ctx)

	document, err := c.verifyOwnership(ctx, uow, userId, id)
	if err != nil {
		return err
	}

	if err := uow.Begin(ctx); err != nil {
		return err
	}
	defer uow.Rollback()

	if err := uow.DocumentEmbeddingRepository().DeleteByDocumentId(ctx, document.Id); err != nil {
		return err
	}

	if err := uow.DocumentRepository().Delete(ctx, document.Id); err != nil {
		return err
	}

	return uow.Commit()
}

func (c *documentService) verifyOwnership(ctx context.Context, uow unitofwork.UnitOfWork, userId uuid.UUID, id uuid.UUID) (*entity.Document, error) {
	document, err := uow.DocumentRepository().FindOne(ctx,
		specification.ByID{ID: id},
		specification.UserOwnedBy{UserID: userId},
	)
	if err != nil {
		return nil, err
	}
	if document == nil {
		return nil, fiber.NewError(fiber.StatusNotFound, "document not found or access denied")
	}
	return document, nil
}

func (c *documentService) publishEmbedJob(ctx context.Context, documentId uuid.UUID) error {
	msgPayload := dto.PublishEmbedDocumentMessage{
		DocumentId: documentId,
	}
	msgJson, err := json.Marshal(msgPayload)
	if err != nil {
		return err
	}
	return c.publisherService.Publish(ctx, msgJson)
}
