package swagger

import (
	"embed"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

const specFile = "openapi.yaml"

//go:embed openapi.yaml
var specFS embed.FS

// RegisterRoutes serves the agent's OpenAPI document at /swagger/openapi.yaml
// and a Swagger UI page for every other /swagger path.
func RegisterRoutes(r *gin.Engine) {
	r.GET("/swagger/*path", func(c *gin.Context) {
		if strings.HasSuffix(c.Param("path"), specFile) {
			serveSpec(c)
			return
		}
		c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(uiPage))
	})
}

func serveSpec(c *gin.Context) {
	data, err := specFS.ReadFile(specFile)
	if err != nil {
		c.String(http.StatusInternalServerError, "openapi document not found")
		return
	}
	c.Data(http.StatusOK, "application/yaml", data)
}

const uiPage = `<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="UTF-8">
  <title>Commuter Agent API - Swagger UI</title>
  <link rel="stylesheet" href="https://unpkg.com/swagger-ui-dist@5/swagger-ui.css">
</head>
<body>
  <div id="swagger-ui"></div>
  <script src="https://unpkg.com/swagger-ui-dist@5/swagger-ui-bundle.js"></script>
  <script>
    SwaggerUIBundle({
      url: '/swagger/openapi.yaml',
      dom_id: '#swagger-ui',
      presets: [SwaggerUIBundle.presets.apis],
      deepLinking: true,
    });
  </script>
</body>
</html>`
