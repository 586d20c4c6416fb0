package services

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"editorial-workflow-api/models"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var testDBSeq int

// newTestDB opens an isolated in-memory database with the full schema.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	testDBSeq++
	dsn := fmt.Sprintf("file:%s_%d?mode=memory&cache=shared", t.Name(), testDBSeq)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("could not open test database: %v", err)
	}

	err = db.AutoMigrate(
		&models.User{},
		&models.Role{},
		&models.Submission{},
		&models.StageAssignment{},
		&models.Publication{},
		&models.ManuscriptFile{},
		&models.ReviewRound{},
		&models.ReviewAssignment{},
	)
	if err != nil {
		t.Fatalf("could not migrate test schema: %v", err)
	}

	return db
}

// fakeBlobStore records puts and deletes so compensating actions can be
// asserted.
type fakeBlobStore struct {
	mu      sync.Mutex
	seq     int
	blobs   map[string]bool
	deleted []string
	putErr  error
}

func newFakeBlobStore() *fakeBlobStore {
	return &fakeBlobStore{blobs: map[string]bool{}}
}

func (f *fakeBlobStore) Put(sourcePath string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.putErr != nil {
		return "", f.putErr
	}
	f.seq++
	id := fmt.Sprintf("blob-%d", f.seq)
	f.blobs[id] = true
	return id, nil
}

func (f *fakeBlobStore) Delete(blobID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.blobs, blobID)
	f.deleted = append(f.deleted, blobID)
	return nil
}

func (f *fakeBlobStore) contains(blobID string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.blobs[blobID]
}

func seedUser(t *testing.T, db *gorm.DB, userID, roleID int) models.User {
	t.Helper()
	user := models.User{
		UserID:    userID,
		UserFname: fmt.Sprintf("User%d", userID),
		UserLname: "Test",
		Email:     fmt.Sprintf("user%d@example.org", userID),
		RoleID:    roleID,
		CreateAt:  time.Now(),
		UpdateAt:  time.Now(),
	}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("could not seed user: %v", err)
	}
	return user
}

func seedSubmission(t *testing.T, db *gorm.DB, submitterID int) models.Submission {
	t.Helper()
	submission := models.Submission{
		ContextID:        1,
		SubmissionNumber: generateSubmissionNumber(),
		SubmitterID:      submitterID,
		Status:           models.SubmissionStatusQueued,
		Locale:           "en",
		CreatedAt:        time.Now(),
		UpdatedAt:        time.Now(),
	}
	if err := db.Create(&submission).Error; err != nil {
		t.Fatalf("could not seed submission: %v", err)
	}
	return submission
}

func seedPublication(t *testing.T, db *gorm.DB, submissionID, version, status int) models.Publication {
	t.Helper()
	abstract := "An abstract."
	pub := models.Publication{
		SubmissionID:  submissionID,
		Status:        status,
		VersionNumber: version,
		Locale:        "en",
		Title:         "A study of workflows",
		Abstract:      &abstract,
		CreatedAt:     time.Now(),
		UpdatedAt:     time.Now(),
	}
	if err := db.Create(&pub).Error; err != nil {
		t.Fatalf("could not seed publication: %v", err)
	}
	return pub
}

func seedReviewRound(t *testing.T, db *gorm.DB, submissionID, stageID, round int) models.ReviewRound {
	t.Helper()
	rr := models.ReviewRound{
		SubmissionID: submissionID,
		StageID:      stageID,
		Round:        round,
		CreatedAt:    time.Now(),
	}
	if err := db.Create(&rr).Error; err != nil {
		t.Fatalf("could not seed review round: %v", err)
	}
	return rr
}

func seedFile(t *testing.T, db *gorm.DB, submissionID, fileStage int, groupID *string) models.ManuscriptFile {
	t.Helper()
	file := models.ManuscriptFile{
		SubmissionID:   submissionID,
		FileStage:      fileStage,
		VariantGroupID: groupID,
		GenreID:        1,
		UploaderUserID: 1,
		BlobID:         fmt.Sprintf("seed-blob-%d", time.Now().UnixNano()),
		OriginalName:   "manuscript.pdf",
		Name:           "Manuscript",
		MimeType:       "application/pdf",
		FileSize:       1024,
		CreatedAt:      time.Now(),
		UpdatedAt:      time.Now(),
	}
	if err := db.Create(&file).Error; err != nil {
		t.Fatalf("could not seed file: %v", err)
	}
	return file
}

func managerCaller(userID int) Caller {
	return Caller{UserID: userID, Roles: []int{models.RoleManager}}
}
