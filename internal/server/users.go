package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"

	"github.com/azaliaz/bookstore/internal/domain/models"
	"github.com/azaliaz/bookstore/internal/logger"
	storerrors "github.com/azaliaz/bookstore/internal/storage/errors"
)

func (s *Server) Register(ctx *gin.Context) {
	log := logger.Get()
	var req registerRequest
	if err := s.bind(ctx, &req); err != nil {
		log.Error().Err(err).Msg("unmarshal body failed")
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "incorrectly entered data"})
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.hashCost)
	if err != nil {
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": "password is too long"})
			return
		}
		log.Error().Err(err).Msg("hash password failed")
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Error registering user"})
		return
	}

	id, err := s.Storage.SaveUser(ctx.Request.Context(), models.User{
		Name:  req.Name,
		Email: req.Email,
		Pass:  string(hash),
	})
	if err != nil {
		if errors.Is(err, storerrors.ErrUserExists) {
			ctx.JSON(http.StatusConflict, gin.H{"error": "Email already in use"})
			return
		}
		log.Error().Err(err).Msg("save user failed")
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Error registering user"})
		return
	}

	ctx.JSON(http.StatusCreated, gin.H{"message": "User registered", "id": id})
}

func (s *Server) Login(ctx *gin.Context) {
	log := logger.Get()
	var req loginRequest
	if err := s.bind(ctx, &req); err != nil {
		log.Error().Err(err).Msg("unmarshal body failed")
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "incorrectly entered data"})
		return
	}

	usr, err := s.Storage.UserByEmail(ctx.Request.Context(), req.Email)
	if err != nil {
		if errors.Is(err, storerrors.ErrUserNoExist) {
			ctx.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
			return
		}
		log.Error().Err(err).Msg("validate user failed")
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Error logging in"})
		return
	}
	if err := bcrypt.CompareHashAndPassword([]byte(usr.Pass), []byte(req.Password)); err != nil {
		log.Debug().Int64("id", usr.ID).Msg("password mismatch")
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"message": "Login successful",
		"user":    models.PublicUser{ID: usr.ID, Name: usr.Name},
	})
}
