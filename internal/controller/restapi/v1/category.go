package v1

import (
	"net/http"

	"github.com/gofiber/fiber/v2"
	"github.com/hikari-systems/image-service/internal/controller/restapi/v1/response"
)

// @Summary  	List categories and their sizes
// @Description Default scaling set plus every configured category
// @Tags 		categories
// @Produce 	json
// @Success 	200 {array} response.Category
// @Router 		/api/category/list [get]
func (r *V1) listCategories(ctx *fiber.Ctx) error {
	return ctx.Status(http.StatusOK).JSON(response.NewCategoryList(r.profile))
}
