package controllers

import (
	"database/sql"
	"errors"
	"net/http"
	"time"

	"github.com/gin-contrib/cache"
	"github.com/gin-contrib/cache/persistence"
	"github.com/gin-gonic/gin"

	"github.com/daccred/lumenforge.attest.so/handlers"
	"github.com/daccred/lumenforge.attest.so/models"
	"github.com/daccred/lumenforge.attest.so/txbuilder"
)

type ForgeController struct {
	db    *sql.DB
	forge *handlers.Forge
}

func NewForgeController(db *sql.DB, forge *handlers.Forge) *ForgeController {
	return &ForgeController{db: db, forge: forge}
}

func (fc *ForgeController) RegisterRoutes(r *gin.Engine) {
	store := persistence.NewInMemoryStore(time.Minute)

	r.GET("/health", fc.HealthCheck)

	v1 := r.Group("/api/v1")
	{
		v1.POST("/transactions", fc.BuildTransaction)
		v1.POST("/transactions/decode", fc.DecodeEnvelope)
		v1.GET("/transactions", fc.GetTransactions)
		v1.GET("/transactions/:hash", fc.GetTransaction)
		v1.GET("/stats", cache.CachePage(store, time.Minute, fc.GetStats))
	}
}

func (fc *ForgeController) HealthCheck(c *gin.Context) {
	if fc.db != nil {
		if err := fc.db.Ping(); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unhealthy", "error": "Database connection failed"})
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{"status": "healthy"})
}

func (fc *ForgeController) BuildTransaction(c *gin.Context) {
	var req models.BuildRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Invalid request body"})
		return
	}

	forged, err := fc.forge.Build(req)
	if err != nil {
		status := http.StatusUnprocessableEntity
		if errors.Is(err, txbuilder.ErrInvalidOperationList) || errors.Is(err, txbuilder.ErrInvalidOperationType) {
			status = http.StatusBadRequest
		}
		c.JSON(status, gin.H{"success": false, "error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"success": true, "data": forged})
}

func (fc *ForgeController) DecodeEnvelope(c *gin.Context) {
	var req models.DecodeRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.EnvelopeXDR == "" {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "envelope_xdr is required"})
		return
	}

	decoded, err := fc.forge.Decode(req.EnvelopeXDR)
	if err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"success": false, "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": decoded})
}

func (fc *ForgeController) GetTransactions(c *gin.Context) {
	limit := c.DefaultQuery("limit", "100")
	offset := c.DefaultQuery("offset", "0")

	rows, err := fc.db.Query(`
		SELECT hash, source_account, sequence_number, fee, operation_count,
		       memo_type, memo_value, network, created_at
		FROM forged_transactions
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to fetch transactions"})
		return
	}
	defer rows.Close()

	var transactions []models.ForgedTransaction
	for rows.Next() {
		var tx models.ForgedTransaction
		var memoType, memoValue sql.NullString
		if err := rows.Scan(&tx.Hash, &tx.SourceAccount, &tx.SequenceNumber, &tx.Fee,
			&tx.OperationCount, &memoType, &memoValue, &tx.Network, &tx.CreatedAt); err == nil {
			if memoType.Valid {
				tx.MemoType = memoType.String
			}
			if memoValue.Valid {
				tx.MemoValue = memoValue.String
			}
			transactions = append(transactions, tx)
		}
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": transactions})
}

func (fc *ForgeController) GetTransaction(c *gin.Context) {
	hash := c.Param("hash")
	var tx models.ForgedTransaction
	var memoType, memoValue, envelopeXDR sql.NullString
	err := fc.db.QueryRow(`
		SELECT hash, source_account, sequence_number, fee, operation_count,
		       memo_type, memo_value, network, transaction_xdr, signature_base,
		       envelope_xdr, created_at
		FROM forged_transactions WHERE hash = $1`, hash).Scan(
		&tx.Hash, &tx.SourceAccount, &tx.SequenceNumber, &tx.Fee, &tx.OperationCount,
		&memoType, &memoValue, &tx.Network, &tx.TransactionXDR, &tx.SignatureBase,
		&envelopeXDR, &tx.CreatedAt)
	if err == sql.ErrNoRows {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "error": "Transaction not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to fetch transaction"})
		return
	}
	if memoType.Valid {
		tx.MemoType = memoType.String
	}
	if memoValue.Valid {
		tx.MemoValue = memoValue.String
	}
	if envelopeXDR.Valid {
		tx.EnvelopeXDR = envelopeXDR.String
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": tx})
}

func (fc *ForgeController) GetStats(c *gin.Context) {
	stats := fc.forge.Snapshot()
	if fc.db != nil {
		var stored int64
		if err := fc.db.QueryRow("SELECT COUNT(*) FROM forged_transactions").Scan(&stored); err == nil {
			stats.StoredCount = stored
		}
	}
	stats.LastUpdateTime = time.Now()
	c.JSON(http.StatusOK, gin.H{"success": true, "data": stats})
}
