package usecase

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"festify-gateway/internal/domain/entity"
	"festify-gateway/internal/domain/repository"

	"go.uber.org/zap"
)

const (
	defaultFestival    = "Festival"
	defaultDescription = "A beautiful AI-powered festival greeting created with Festify"
)

// MetadataService pins greeting images and their NFT metadata.
type MetadataService struct {
	pinner      repository.Pinner
	externalURL string
	log         *zap.Logger
	now         func() time.Time
}

func NewMetadataService(pinner repository.Pinner, externalURL string, log *zap.Logger) *MetadataService {
	if log == nil {
		log = zap.NewNop()
	}
	return &MetadataService{pinner: pinner, externalURL: externalURL, log: log.Named("metadata"), now: time.Now}
}

func (s *MetadataService) UploadImage(ctx context.Context, fileName string, r io.Reader) (string, error) {
	if s.pinner == nil {
		return "", entity.ErrFeatureUnavailable
	}
	if fileName == "" {
		fileName = fmt.Sprintf("festify-greeting-%d.png", s.now().UnixMilli())
	}
	url, err := s.pinner.PinFile(ctx, fileName, r)
	if err != nil {
		return "", fmt.Errorf("failed to upload image: %w", err)
	}
	return url, nil
}

// BuildMetadata assembles the NFT metadata for a greeting without pinning it.
func (s *MetadataService) BuildMetadata(req entity.MetadataRequest) entity.NFTMetadata {
	festival := strings.TrimSpace(req.Festival)
	if festival == "" {
		festival = defaultFestival
	}
	date := s.now().UTC().Format("2006-01-02")
	design := entity.DesignDisplayName(req.Design)

	name := req.Greeting.Title
	if name == "" {
		name = festival + " Greeting"
	}
	message := req.Greeting.Message
	if message == "" {
		message = defaultDescription
	}

	return entity.NFTMetadata{
		Name:        name,
		Description: fmt.Sprintf("%s\n\nCreated on: %s\nDesign: %s", message, date, design),
		Image:       req.ImageURL,
		Attributes: []entity.NFTAttribute{
			{TraitType: "Festival Type", Value: festival},
			{TraitType: "Design Theme", Value: design},
			{TraitType: "Creator Platform", Value: "Festify AI"},
			{TraitType: "Creation Date", Value: date},
			{TraitType: "Type", Value: "AI-Generated Greeting NFT"},
			{TraitType: "Blockchain", Value: "LazAI"},
		},
		ExternalURL: s.externalURL,
	}
}

// PublishMetadata builds and pins the metadata, returning its gateway URL.
func (s *MetadataService) PublishMetadata(ctx context.Context, req entity.MetadataRequest) (string, entity.NFTMetadata, error) {
	if s.pinner == nil {
		return "", entity.NFTMetadata{}, entity.ErrFeatureUnavailable
	}
	if strings.TrimSpace(req.ImageURL) == "" {
		return "", entity.NFTMetadata{}, fmt.Errorf("%w: imageUrl is required", entity.ErrInvalidRequest)
	}

	meta := s.BuildMetadata(req)
	uri, err := s.pinner.PinJSON(ctx, meta.Name, meta)
	if err != nil {
		return "", meta, fmt.Errorf("failed to upload metadata: %w", err)
	}
	s.log.Info("metadata pinned", zap.String("uri", uri), zap.String("design", req.Design))
	return uri, meta, nil
}
