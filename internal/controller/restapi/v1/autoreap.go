package v1

import (
	"errors"
	"io/fs"
	"os"

	"github.com/gofiber/fiber/v2"
)

const reapFilesKey = "reapFiles"

// autoReap removes temporary upload files once the response has been
// produced, whether the handler succeeded or not. Handlers register
// paths with reap().
func (r *V1) autoReap(ctx *fiber.Ctx) error {
	err := ctx.Next()

	paths, _ := ctx.Locals(reapFilesKey).([]string)
	for _, p := range paths {
		rmErr := os.Remove(p)
		if rmErr != nil && !errors.Is(rmErr, fs.ErrNotExist) {
			r.logger.Warn("autoreap: failed to remove %s: %v", p, rmErr)

			continue
		}
		r.logger.Debug("autoreap: removed %s", p)
	}

	return err
}

func reap(ctx *fiber.Ctx, path string) {
	paths, _ := ctx.Locals(reapFilesKey).([]string)
	ctx.Locals(reapFilesKey, append(paths, path))
}
