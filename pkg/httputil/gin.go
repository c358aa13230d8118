package httputil

import "github.com/gin-gonic/gin"

// WriteError はProblemDetailをGinレスポンスとして書き込む。
// Instanceが未設定ならリクエストパスを入れる。
func WriteError(c *gin.Context, problem *ProblemDetail) {
	c.Header("Content-Type", ContentType)
	c.JSON(problem.Status, withInstance(c, problem))
}

// AbortWithError はProblemDetailを書き込み、後続のハンドラーを中断する。
func AbortWithError(c *gin.Context, problem *ProblemDetail) {
	c.Header("Content-Type", ContentType)
	c.AbortWithStatusJSON(problem.Status, withInstance(c, problem))
}

func withInstance(c *gin.Context, problem *ProblemDetail) *ProblemDetail {
	if problem.Instance != "" || c.Request == nil {
		return problem
	}
	p := *problem
	p.Instance = c.Request.URL.Path
	return &p
}
