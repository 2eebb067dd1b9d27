package handlers

import (
	"net/http"

	goversion "github.com/caarlos0/go-version"
	"github.com/gin-gonic/gin"
)

type VersionHandler struct {
	info goversion.Info
}

func NewVersionHandler(info goversion.Info) *VersionHandler {
	return &VersionHandler{info: info}
}

func (h *VersionHandler) Version(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, gin.H{
		"name":      h.info.Name,
		"version":   h.info.GitVersion,
		"commit":    h.info.GitCommit,
		"treeState": h.info.GitTreeState,
		"buildDate": h.info.BuildDate,
		"builtBy":   h.info.BuiltBy,
		"goVersion": h.info.GoVersion,
		"platform":  h.info.Platform,
	})
}
