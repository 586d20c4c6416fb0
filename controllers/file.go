// controllers/file.go
package controllers

import (
	"errors"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"editorial-workflow-api/config"
	"editorial-workflow-api/models"
	"editorial-workflow-api/services"
	"editorial-workflow-api/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

var allowedUploadExtensions = map[string]bool{
	".pdf":  true,
	".doc":  true,
	".docx": true,
	".xls":  true,
	".xlsx": true,
	".png":  true,
	".jpg":  true,
	".jpeg": true,
	".mp3":  true,
	".mp4":  true,
}

const maxUploadSize = int64(50 * 1024 * 1024) // 50MB

// fileCaller resolves the caller scoped to the file's submission.
func fileCaller(c *gin.Context, fileID int) (services.Caller, int, bool) {
	var file models.ManuscriptFile
	err := config.DB.Where("file_id = ? AND deleted_at IS NULL", fileID).First(&file).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "File not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load file"})
		}
		return services.Caller{}, 0, false
	}
	caller, ok := resolveCaller(c, file.SubmissionID)
	return caller, file.SubmissionID, ok
}

// UploadFile stores a payload and creates a manuscript file in the
// requested stage
func UploadFile(c *gin.Context) {
	submissionID, ok := paramID(c, "id")
	if !ok {
		return
	}
	caller, ok := resolveCaller(c, submissionID)
	if !ok {
		return
	}

	fileStage, err := strconv.Atoi(c.PostForm("file_stage"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid file stage"})
		return
	}
	genreID, _ := strconv.Atoi(c.PostForm("genre_id"))

	var reviewRoundID *int
	assocType := 0
	if raw := c.PostForm("review_round_id"); raw != "" {
		id, err := strconv.Atoi(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid review round"})
			return
		}
		reviewRoundID = &id
		assocType = models.AssocTypeReviewRound
	}

	header, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No file uploaded"})
		return
	}
	if header.Size > maxUploadSize {
		c.JSON(http.StatusBadRequest, gin.H{"error": "File size exceeds 50MB limit"})
		return
	}

	ext := strings.ToLower(filepath.Ext(header.Filename))
	if !allowedUploadExtensions[ext] {
		c.JSON(http.StatusBadRequest, gin.H{"error": "File type not allowed"})
		return
	}

	// Park the payload in a temp file; the service copies it into the
	// blob store and owns cleanup of the stored copy from there.
	tmpPath := filepath.Join(os.TempDir(), uuid.NewString()+ext)
	if err := c.SaveUploadedFile(header, tmpPath); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save file"})
		return
	}
	defer os.Remove(tmpPath)

	name := utils.SanitizeInput(c.PostForm("name"))
	if name == "" {
		name = header.Filename
	}
	var caption *string
	if raw := c.PostForm("caption"); raw != "" {
		sanitized := utils.SanitizeInput(raw)
		caption = &sanitized
	}

	file, err := fileSvc.Upload(caller, submissionID, services.UploadRequest{
		FileStage:     fileStage,
		SourcePath:    tmpPath,
		OriginalName:  header.Filename,
		MimeType:      header.Header.Get("Content-Type"),
		FileSize:      header.Size,
		GenreID:       genreID,
		Name:          name,
		Caption:       caption,
		AssocType:     assocType,
		ReviewRoundID: reviewRoundID,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"message": "File uploaded successfully",
		"file":    file,
	})
}

// UpdateFile edits file metadata. A new payload may be attached as
// multipart "file".
func UpdateFile(c *gin.Context) {
	fileID, ok := paramID(c, "id")
	if !ok {
		return
	}
	caller, _, ok := fileCaller(c, fileID)
	if !ok {
		return
	}

	changes := services.FileChanges{}
	if raw, exists := c.GetPostForm("name"); exists {
		sanitized := utils.SanitizeInput(raw)
		changes.Name = &sanitized
	}
	if raw, exists := c.GetPostForm("caption"); exists {
		sanitized := utils.SanitizeInput(raw)
		changes.Caption = &sanitized
	}
	if raw, exists := c.GetPostForm("genre_id"); exists {
		genreID, err := strconv.Atoi(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid genre"})
			return
		}
		changes.GenreID = &genreID
	}

	if header, err := c.FormFile("file"); err == nil {
		if header.Size > maxUploadSize {
			c.JSON(http.StatusBadRequest, gin.H{"error": "File size exceeds 50MB limit"})
			return
		}
		ext := strings.ToLower(filepath.Ext(header.Filename))
		if !allowedUploadExtensions[ext] {
			c.JSON(http.StatusBadRequest, gin.H{"error": "File type not allowed"})
			return
		}
		tmpPath := filepath.Join(os.TempDir(), uuid.NewString()+ext)
		if err := c.SaveUploadedFile(header, tmpPath); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save file"})
			return
		}
		defer os.Remove(tmpPath)
		changes.NewPayloadPath = tmpPath
	}

	if err := fileSvc.Edit(caller, fileID, changes); err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "File updated successfully",
	})
}

// CopyFile duplicates a file's metadata into another stage
func CopyFile(c *gin.Context) {
	fileID, ok := paramID(c, "id")
	if !ok {
		return
	}
	caller, _, ok := fileCaller(c, fileID)
	if !ok {
		return
	}

	type CopyFileRequest struct {
		ToFileStage   int  `json:"to_file_stage" binding:"required"`
		ReviewRoundID *int `json:"review_round_id"`
	}

	var req CopyFileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	copied, err := fileSvc.Copy(caller, fileID, req.ToFileStage, req.ReviewRoundID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"message": "File copied successfully",
		"file":    copied,
	})
}

// DeleteFile removes a file and cleans up its variant group
func DeleteFile(c *gin.Context) {
	fileID, ok := paramID(c, "id")
	if !ok {
		return
	}
	caller, _, ok := fileCaller(c, fileID)
	if !ok {
		return
	}

	if err := fileSvc.Delete(caller, fileID); err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "File deleted successfully",
	})
}

// DownloadFile streams a file's payload to a caller with read access
func DownloadFile(c *gin.Context) {
	fileID, ok := paramID(c, "id")
	if !ok {
		return
	}
	caller, _, ok := fileCaller(c, fileID)
	if !ok {
		return
	}

	file, err := fileSvc.GetFile(caller, fileID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	path := blobStore.Path(file.BlobID)
	if _, err := os.Stat(path); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "File payload not found"})
		return
	}

	c.FileAttachment(path, file.OriginalName)
}

// LinkVariant joins two media files into a variant group
func LinkVariant(c *gin.Context) {
	fileID, ok := paramID(c, "id")
	if !ok {
		return
	}
	caller, submissionID, ok := fileCaller(c, fileID)
	if !ok {
		return
	}

	type LinkVariantRequest struct {
		SiblingFileID int `json:"sibling_file_id" binding:"required"`
	}

	var req LinkVariantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := variantSvc.Link(caller, fileID, req.SiblingFileID, submissionID); err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Files linked successfully",
	})
}

// UnlinkVariant removes a file from its variant group
func UnlinkVariant(c *gin.Context) {
	fileID, ok := paramID(c, "id")
	if !ok {
		return
	}
	caller, submissionID, ok := fileCaller(c, fileID)
	if !ok {
		return
	}

	changed, err := variantSvc.Unlink(caller, fileID, submissionID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":       true,
		"message":       "File unlinked successfully",
		"changed_files": changed,
	})
}
