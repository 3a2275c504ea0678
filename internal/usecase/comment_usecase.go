package usecase

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"dealdesk/internal/domain/apperror"
	"dealdesk/internal/domain/entity"
	"dealdesk/internal/domain/repository"
	"dealdesk/internal/lifecycle"
)

type AddCommentRequest struct {
	Content    string `json:"content"`
	IsInternal bool   `json:"isInternal,omitempty"`
}

type CommentUsecase interface {
	Add(ctx context.Context, p entity.Principal, documentID string, req *AddCommentRequest) (*entity.Comment, error)
	List(ctx context.Context, p entity.Principal, documentID string) ([]entity.Comment, error)
}

type commentUsecase struct {
	docs     repository.DocumentRepository
	comments repository.CommentRepository
	engine   *lifecycle.Engine
	logger   *zap.Logger
}

func NewCommentUsecase(
	docs repository.DocumentRepository,
	comments repository.CommentRepository,
	engine *lifecycle.Engine,
	logger *zap.Logger,
) CommentUsecase {
	return &commentUsecase{
		docs:     docs,
		comments: comments,
		engine:   engine,
		logger:   logger,
	}
}

func (u *commentUsecase) Add(ctx context.Context, p entity.Principal, documentID string, req *AddCommentRequest) (*entity.Comment, error) {
	if strings.TrimSpace(req.Content) == "" {
		return nil, apperror.Validation("comment content is required")
	}

	doc, err := u.docs.GetByID(ctx, documentID)
	if err != nil {
		return nil, err
	}
	if !u.engine.CanRead(doc, p) {
		return nil, apperror.Permission("no access to this document")
	}
	// internal comments belong to the issuing side only
	if req.IsInternal && !p.IsIssuerOf(doc) && p.Role != entity.RoleAdmin {
		return nil, apperror.Permission("internal comments are restricted to the issuing party")
	}

	comment := &entity.Comment{
		ID:         uuid.NewString(),
		DocumentID: doc.ID,
		AuthorID:   p.ID,
		Content:    req.Content,
		IsInternal: req.IsInternal,
		CreatedAt:  time.Now().UTC(),
	}
	if err := u.comments.Create(ctx, comment); err != nil {
		return nil, err
	}
	return comment, nil
}

func (u *commentUsecase) List(ctx context.Context, p entity.Principal, documentID string) ([]entity.Comment, error) {
	doc, err := u.docs.GetByID(ctx, documentID)
	if err != nil {
		return nil, err
	}
	if !u.engine.CanRead(doc, p) {
		return nil, apperror.Permission("no access to this document")
	}

	includeInternal := p.IsIssuerOf(doc) || p.Role == entity.RoleAdmin
	return u.comments.ListByDocument(ctx, doc.ID, includeInternal)
}
