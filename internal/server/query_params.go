package server

import (
	"strconv"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
)

// pathID parses a snowflake path parameter, aborting with a validation
// error when it is malformed.
func pathID(c *gin.Context, name string) (snowflake.ID, bool) {
	raw := c.Param(name)
	id, err := snowflake.ParseString(raw)
	if err != nil || id == 0 {
		AbortWithError(c, newValidationError(name, "invalid_id", "invalid id"))
		return 0, false
	}
	return id, true
}

func bindInt(raw string, out *int) error {
	v, err := strconv.Atoi(raw)
	if err != nil {
		return err
	}
	*out = v
	return nil
}
