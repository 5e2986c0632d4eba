package controller

import (
	"errors"

	"github.com/go-playground/validator/v10"

	"github.com/ytget/media-toolkit/internal/model"
	"github.com/ytget/media-toolkit/internal/platform"
)

// Request is what a front-end submits to Start
type Request struct {
	Source        string       `validate:"required"`
	Format        model.Format `validate:"omitempty,oneof=audio video video_only"`
	OutputDir     string       `validate:"required,dir,writable_dir"`
	WholePlaylist bool
}

var validate *validator.Validate

func init() {
	validate = validator.New()
	_ = validate.RegisterValidation("youtube_url", func(fl validator.FieldLevel) bool {
		return platform.IsYouTubeURL(fl.Field().String())
	})
	_ = validate.RegisterValidation("tiktok_url", func(fl validator.FieldLevel) bool {
		return platform.IsTikTokURL(fl.Field().String())
	})
	_ = validate.RegisterValidation("writable_dir", func(fl validator.FieldLevel) bool {
		return platform.IsWritableDir(fl.Field().String())
	})
	_ = validate.RegisterValidation("torrent_source", func(fl validator.FieldLevel) bool {
		s := fl.Field().String()
		return platform.IsMagnetURI(s) || platform.IsTorrentFile(s)
	})
}

// sourceTags maps a service to the rules its source must satisfy
var sourceTags = map[model.ServiceKind]string{
	model.ServiceYouTube: "url,youtube_url",
	model.ServiceTikTok:  "url,tiktok_url",
	model.ServiceTorrent: "torrent_source",
}

var reasons = map[string]string{
	"required":       "is required",
	"dir":            "must be an existing directory",
	"writable_dir":   "is not writable",
	"oneof":          "is not a supported format",
	"url":            "must be a valid URL",
	"youtube_url":    "must be a YouTube link",
	"tiktok_url":     "must be a TikTok link",
	"torrent_source": "must be a magnet link or an existing .torrent file",
}

// ValidateRequest checks req for the given service. Errors match model.ErrValidation.
func ValidateRequest(kind model.ServiceKind, req Request) error {
	if err := validate.Struct(req); err != nil {
		return toValidationError(err)
	}

	if tag, ok := sourceTags[kind]; ok {
		if err := validate.Var(req.Source, tag); err != nil {
			return toValidationError(err)
		}
	}

	if formats := model.FormatsFor(kind); len(formats) > 0 && req.Format != "" {
		for _, f := range formats {
			if f == req.Format {
				return nil
			}
		}
		return &model.ValidationError{Field: "format", Reason: "is not offered for " + string(kind)}
	}
	return nil
}

func toValidationError(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return &model.ValidationError{Reason: err.Error()}
	}

	fe := verrs[0]
	field := fe.Field()
	switch field {
	case "", "Source":
		field = "source"
	case "OutputDir":
		field = "output directory"
	case "Format":
		field = "format"
	}
	reason, ok := reasons[fe.Tag()]
	if !ok {
		reason = "is invalid"
	}
	return &model.ValidationError{Field: field, Reason: reason}
}
