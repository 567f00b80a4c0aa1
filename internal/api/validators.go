package api

import (
	"strings"
	"sync"

	"cfq/wod-board/internal/domain"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	log "github.com/sirupsen/logrus"
)

var registerOnce sync.Once

// RegisterValidators adds the wodcategory and level binding tags to gin's validator.
func RegisterValidators() {
	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			log.Warn("gin validator engine is not go-playground/validator, custom tags not registered")
			return
		}
		if err := v.RegisterValidation("wodcategory", validateCategory); err != nil {
			log.Fatalf("register wodcategory validator: %s", err)
		}
		if err := v.RegisterValidation("level", validateLevel); err != nil {
			log.Fatalf("register level validator: %s", err)
		}
	})
}

func validateCategory(fl validator.FieldLevel) bool {
	return domain.Category(strings.ToLower(strings.TrimSpace(fl.Field().String()))).IsKnown()
}

func validateLevel(fl validator.FieldLevel) bool {
	return domain.Level(fl.Field().String()).IsKnown()
}
