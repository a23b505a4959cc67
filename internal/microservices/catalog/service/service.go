package service

import (
	"cakeshop/internal/config"
	"cakeshop/internal/microservices/catalog/repository"
)

type Service struct {
	CakeService   CakeServiceInterface
	UploadService UploadServiceInterface
}

func New(repo *repository.Repository, uploads config.UploadsConfig) *Service {
	return &Service{
		CakeService:   NewCakeService(repo.CakeRepo),
		UploadService: NewUploadService(uploads.Dir, uploads.MaxBytes),
	}
}
