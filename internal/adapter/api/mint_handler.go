package api

import (
	"festify-gateway/internal/domain/entity"
	"festify-gateway/internal/usecase"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// MintHandler serves the pinning side of NFT minting and the gated DAT flow.
type MintHandler struct {
	metadata *usecase.MetadataService
	dat      *usecase.DATMinter
	log      *zap.Logger
}

func NewMintHandler(metadata *usecase.MetadataService, dat *usecase.DATMinter, log *zap.Logger) *MintHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &MintHandler{metadata: metadata, dat: dat, log: log.Named("mint")}
}

func (h *MintHandler) Designs(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"designs": entity.DesignThemes()})
}

func (h *MintHandler) UploadImage(c *fiber.Ctx) error {
	fh, err := c.FormFile("file")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "file is required"})
	}
	f, err := fh.Open()
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "could not read file"})
	}
	defer f.Close()

	url, err := h.metadata.UploadImage(c.UserContext(), fh.Filename, f)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(fiber.Map{"imageUrl": url})
}

func (h *MintHandler) PublishMetadata(c *fiber.Ctx) error {
	var req entity.MetadataRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}
	uri, meta, err := h.metadata.PublishMetadata(c.UserContext(), req)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(fiber.Map{"metadataUri": uri, "metadata": meta})
}

func (h *MintHandler) MintDAT(c *fiber.Ctx) error {
	if !h.dat.Available() {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"error": "DAT minting will be available once mainnet is live"})
	}
	var req entity.DATMintRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}
	res, err := h.dat.Mint(c.UserContext(), req)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(res)
}

func (h *MintHandler) fail(c *fiber.Ctx, err error) error {
	code := statusFor(err)
	h.log.Warn("mint request failed", zap.String("path", c.Path()), zap.Int("status", code), zap.Error(err))
	if code == fiber.StatusInternalServerError {
		// Upstream pinning and registry errors are reported verbatim.
		return c.Status(code).JSON(fiber.Map{"error": err.Error()})
	}
	return writeError(c, err)
}
