package controllers

import (
	"os"

	"editorial-workflow-api/config"
	"editorial-workflow-api/services"
)

var (
	blobStore  *services.DiskBlobStore
	variantSvc *services.VariantService
	fileSvc    *services.FileService
	pubSvc     *services.PublicationService
)

// Init wires the service layer against the shared database connection.
// Must run after config.InitDB.
func Init() error {
	store, err := services.NewDiskBlobStore(os.Getenv("UPLOAD_PATH"))
	if err != nil {
		return err
	}
	blobStore = store
	variantSvc = services.NewVariantService(config.DB)
	fileSvc = services.NewFileService(config.DB, blobStore, variantSvc)
	pubSvc = services.NewPublicationService(config.DB, fileSvc, config.SendMail)
	return nil
}
