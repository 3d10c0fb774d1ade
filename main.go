package main

import (
	"context"
	"log"
	"net/http"
	"strconv"
	"time"

	"scholar-hand/config"
	"scholar-hand/models"
	"scholar-hand/providers/openalex"
	"scholar-hand/providers/orcid"
	"scholar-hand/providers/resolver"
	"scholar-hand/services"
	"scholar-hand/storage"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var (
	publicationsAuditedCounter prometheus.Counter
	doisRepairedCounter        prometheus.Counter
	personsMergedCounter       prometheus.Counter
)

func init() {
	publicationsAuditedCounter = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "publications_audited_total",
			Help: "Total number of publications checked by the DOI audit.",
		},
	)
	doisRepairedCounter = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "dois_repaired_total",
			Help: "Total number of DOIs replaced by the repair orchestrator.",
		},
	)
	personsMergedCounter = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "persons_merged_total",
			Help: "Total number of duplicate persons merged away.",
		},
	)
	prometheus.MustRegister(publicationsAuditedCounter, doisRepairedCounter, personsMergedCounter)
}

func apiKeyAuthMiddleware(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		if cfg.APISecretKey == "" {
			c.Next()
			return
		}
		apiKey := c.GetHeader("X-API-KEY")
		if apiKey != cfg.APISecretKey {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized: Invalid API Key"})
			return
		}
		c.Next()
	}
}

func main() {
	logging, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("can't initialize zap logger: %v", err)
	}
	defer logging.Sync()

	cfg, err := config.Load()
	if err != nil {
		logging.Fatal("Config load error", zap.Error(err))
	}

	db, err := gorm.Open(postgres.Open(cfg.DSN()), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		logging.Fatal("Failed to connect to database", zap.Error(err))
	}
	logging.Info("Successfully connected to database.")

	logging.Info("Running database auto-migration...")
	db.AutoMigrate(
		&models.Person{},
		&models.Publication{},
		&models.AuthorshipLink{},
		&models.MergeLog{},
		&models.ProjectMember{},
	)

	// Setup Storage
	s3Client, err := storage.NewS3Client(cfg)
	if err != nil {
		logging.Fatal("S3 client creation failed", zap.Error(err))
	}
	docStore := storage.NewDocumentStore(s3Client, cfg.DocStoreS3Bucket)

	// Setup Providers
	indexClient := openalex.NewClient(cfg, logging)
	resolverClient := resolver.NewClient(cfg, logging)
	registryClient := orcid.NewClient(cfg, logging)

	// Setup Services
	verifier := services.NewVerificationClient(indexClient, resolverClient, logging)
	linker := services.NewLinker(db, logging, cfg.LinkThreshold)
	dedup := services.NewDuplicateResolver(db, logging, cfg.MergeThreshold)
	auditor := services.NewAuditCoordinator(db, verifier, logging, cfg.AuditWorkers)
	repairer := services.NewRepairOrchestrator(db, indexClient, docStore, logging)
	enricher := services.NewEnrichmentService(db, indexClient, registryClient, logging, cfg.MetricsSyncThresholdDays)

	// Setup Router
	router := gin.Default()
	router.Use(gin.Recovery())
	router.Use(apiKeyAuthMiddleware(cfg))
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	setupPersonRoutes(router, db, dedup, enricher, logging)
	setupPublicationRoutes(router, db, docStore, logging)
	setupLinkRoutes(router, db, linker, docStore, logging)
	setupVerificationRoutes(router, db, cfg, verifier, auditor, repairer, logging)

	// Setup Cron: nächtliches Audit aller offenen DOIs.
	cronScheduler := cron.New()
	cronScheduler.AddFunc(cfg.CronSchedule, func() {
		logging.Info("Running scheduled DOI audit...")
		summary, err := auditor.AuditPending(context.Background(), cfg.AuditStrategy)
		if err != nil {
			logging.Error("Scheduled audit failed", zap.Error(err))
			return
		}
		logging.Info("Scheduled audit completed",
			zap.Int("total", summary.TotalChecked),
			zap.Int("valid", summary.Valid),
			zap.Int("broken", summary.Broken))
		publicationsAuditedCounter.Add(float64(summary.TotalChecked - summary.Skipped))
	})
	cronScheduler.Start()

	logging.Info("Starting server", zap.String("port", cfg.HTTPPort))
	srv := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           router,
		ReadTimeout:       30 * time.Second,
		ReadHeaderTimeout: 15 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	if err := srv.ListenAndServe(); err != nil {
		logging.Fatal("Failed to run server", zap.Error(err))
	}
}

func setupPersonRoutes(router *gin.Engine, db *gorm.DB, dedup *services.DuplicateResolver, enricher *services.EnrichmentService, log *zap.Logger) {
	rg := router.Group("/persons")

	rg.GET("/", func(c *gin.Context) {
		query := db.Model(&models.Person{})
		if c.Query("active") != "" {
			active, _ := strconv.ParseBool(c.Query("active"))
			query = query.Where("active = ?", active)
		}
		var persons []models.Person
		if err := query.Order("full_name").Find(&persons).Error; err != nil {
			log.Error("Database query for persons failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "database error"})
			return
		}
		c.JSON(http.StatusOK, persons)
	})

	rg.POST("/", func(c *gin.Context) {
		var person models.Person
		if err := c.ShouldBindJSON(&person); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
			return
		}
		if person.FullName == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "full_name is required"})
			return
		}
		person.Active = true
		if err := db.Create(&person).Error; err != nil {
			log.Error("Failed to create person", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "database error"})
			return
		}
		c.JSON(http.StatusCreated, person)
	})

	rg.GET("/:id", func(c *gin.Context) {
		var person models.Person
		if err := db.First(&person, c.Param("id")).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "person not found"})
			return
		}
		c.JSON(http.StatusOK, person)
	})

	// Dedup-Lauf über das gesamte aktive Roster.
	rg.POST("/resolve-duplicates", func(c *gin.Context) {
		summary, err := dedup.ResolveDuplicates()
		if err != nil {
			log.Error("Duplicate resolution failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error(), "partial": summary})
			return
		}
		personsMergedCounter.Add(float64(summary.Deleted))
		c.JSON(http.StatusOK, summary)
	})

	// Kennzahlen-Sync für alle aktiven Personen mit ORCID.
	rg.POST("/sync-metrics", func(c *gin.Context) {
		force, _ := strconv.ParseBool(c.DefaultQuery("force", "false"))
		summary, err := enricher.SyncPersonMetrics(c.Request.Context(), force)
		if err != nil {
			log.Error("Metrics sync failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error(), "partial": summary})
			return
		}
		c.JSON(http.StatusOK, summary)
	})

	// Namens-Varianten einer Person aus dem ORCID-Register auffrischen.
	rg.POST("/:id/enrich", func(c *gin.Context) {
		var person models.Person
		if err := db.First(&person, c.Param("id")).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "person not found"})
			return
		}
		if err := enricher.EnrichPersonFromRegistry(c.Request.Context(), &person); err != nil {
			log.Error("Person enrichment failed", zap.Uint("person_id", person.ID), zap.Error(err))
			c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, person)
	})
}

func setupPublicationRoutes(router *gin.Engine, db *gorm.DB, docStore *storage.DocumentStore, log *zap.Logger) {
	rg := router.Group("/publications")

	rg.GET("/", func(c *gin.Context) {
		query := db.Model(&models.Publication{})
		if status := c.Query("doi_status"); status != "" {
			query = query.Where("doi_status = ?", status)
		}
		if limit, _ := strconv.Atoi(c.Query("limit")); limit > 0 {
			query = query.Limit(limit)
		}
		var pubs []models.Publication
		if err := query.Order("created_at desc").Find(&pubs).Error; err != nil {
			log.Error("Database query for publications failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "database error"})
			return
		}
		c.JSON(http.StatusOK, pubs)
	})

	// Ingestion: legt die Publikation an, speichert den Volltext im
	// Dokument-Store und übernimmt den ersten gefundenen DOI als Kandidat
	// (Status pending, verifiziert wird später).
	rg.POST("/", func(c *gin.Context) {
		type PublicationInput struct {
			Title     string `json:"title"`
			Authors   string `json:"authors"`
			DOI       string `json:"doi"`
			SourceURL string `json:"source_url"`
			FullText  string `json:"full_text"`
		}
		var req PublicationInput
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
			return
		}
		if req.Title == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "title is required"})
			return
		}

		pub := models.Publication{
			Title:     req.Title,
			Authors:   req.Authors,
			SourceURL: req.SourceURL,
			DOIStatus: models.DOIStatusPending,
		}
		doi := services.CleanDOI(req.DOI)
		if doi == "" && req.FullText != "" {
			if candidates := services.ExtractDOIs(req.FullText); len(candidates) > 0 {
				doi = candidates[0]
			}
		}
		if doi != "" {
			pub.CanonicalDOI = &doi
		}

		if err := db.Create(&pub).Error; err != nil {
			log.Error("Failed to create publication", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "database error"})
			return
		}

		if req.FullText != "" {
			key := storage.TextKey(pub.ID)
			if err := docStore.PutText(c.Request.Context(), key, req.FullText); err != nil {
				log.Error("Full text upload failed", zap.Uint("publication_id", pub.ID), zap.Error(err))
			} else if err := db.Model(&pub).Update("full_text_key", key).Error; err != nil {
				log.Error("Failed to store full text key", zap.Uint("publication_id", pub.ID), zap.Error(err))
			} else {
				pub.FullTextKey = key
			}
		}
		c.JSON(http.StatusCreated, pub)
	})

	rg.GET("/:id", func(c *gin.Context) {
		var pub models.Publication
		if err := db.First(&pub, c.Param("id")).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "publication not found"})
			return
		}
		c.JSON(http.StatusOK, pub)
	})
}

func setupLinkRoutes(router *gin.Engine, db *gorm.DB, linker *services.Linker, docStore *storage.DocumentStore, log *zap.Logger) {
	rg := router.Group("/publications")

	rg.GET("/:id/links", func(c *gin.Context) {
		var links []models.AuthorshipLink
		if err := db.Where("publication_id = ?", c.Param("id")).Order("score desc").
			Find(&links).Error; err != nil {
			log.Error("Database query for links failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "database error"})
			return
		}
		c.JSON(http.StatusOK, links)
	})

	// Links einer Publikation neu berechnen (voller Ersatz der
	// nicht-manuellen Links).
	rg.POST("/:id/link", func(c *gin.Context) {
		var pub models.Publication
		if err := db.First(&pub, c.Param("id")).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "publication not found"})
			return
		}

		var roster []models.Person
		if err := db.Where("active = ?", true).Find(&roster).Error; err != nil {
			log.Error("Roster query failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "database error"})
			return
		}

		fullText := ""
		if pub.FullTextKey != "" {
			text, ok, err := docStore.FetchText(c.Request.Context(), pub.FullTextKey)
			if err != nil {
				log.Warn("Full text fetch failed, linking from author string only",
					zap.Uint("publication_id", pub.ID), zap.Error(err))
			} else if ok {
				fullText = text
			}
		}

		links, err := linker.Relink(&pub, fullText, roster)
		if err != nil {
			log.Error("Relink failed", zap.Uint("publication_id", pub.ID), zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "database error"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"publication_id": pub.ID, "links": links})
	})

	// Manueller Link: höchste Evidenzstufe, übersteht jede Neuberechnung.
	rg.POST("/:id/links", func(c *gin.Context) {
		type ManualLinkInput struct {
			PersonID uint `json:"person_id"`
		}
		var req ManualLinkInput
		if err := c.ShouldBindJSON(&req); err != nil || req.PersonID == 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "person_id is required"})
			return
		}
		pubID, err := strconv.ParseUint(c.Param("id"), 10, 32)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid publication id"})
			return
		}

		// Bestehenden Link für das Paar ersetzen (Unique-Paar-Index).
		if err := db.Where("person_id = ? AND publication_id = ?", req.PersonID, uint(pubID)).
			Delete(&models.AuthorshipLink{}).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "database error"})
			return
		}
		link := models.AuthorshipLink{
			PersonID:      req.PersonID,
			PublicationID: uint(pubID),
			Score:         100,
			Method:        models.MatchMethodManual,
		}
		if err := db.Create(&link).Error; err != nil {
			log.Error("Failed to create manual link", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "database error"})
			return
		}
		c.JSON(http.StatusCreated, link)
	})
}

func setupVerificationRoutes(router *gin.Engine, db *gorm.DB, cfg *config.Config, verifier *services.VerificationClient, auditor *services.AuditCoordinator, repairer *services.RepairOrchestrator, log *zap.Logger) {
	rg := router.Group("/publications")

	// Einzelne Publikation verifizieren.
	rg.POST("/:id/verify", func(c *gin.Context) {
		var pub models.Publication
		if err := db.First(&pub, c.Param("id")).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "publication not found"})
			return
		}
		if pub.CanonicalDOI == nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "publication has no DOI"})
			return
		}

		strategy := c.DefaultQuery("strategy", cfg.AuditStrategy)
		outcome := verifier.Verify(c.Request.Context(), *pub.CanonicalDOI, strategy)

		if outcome.Status != pub.DOIStatus && models.CanTransitionDOIStatus(pub.DOIStatus, outcome.Status) {
			if err := db.Model(&pub).Update("doi_status", outcome.Status).Error; err != nil {
				log.Error("Failed to update DOI status", zap.Uint("publication_id", pub.ID), zap.Error(err))
				c.JSON(http.StatusInternalServerError, gin.H{"error": "database error"})
				return
			}
			pub.DOIStatus = outcome.Status
		}
		c.JSON(http.StatusOK, gin.H{"publication_id": pub.ID, "doi_status": pub.DOIStatus, "outcome": outcome})
	})

	// Batch-Audit aller offenen DOIs.
	rg.POST("/audit", func(c *gin.Context) {
		strategy := c.DefaultQuery("strategy", cfg.AuditStrategy)
		summary, err := auditor.AuditPending(c.Request.Context(), strategy)
		if err != nil {
			log.Error("Batch audit failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error(), "partial": summary})
			return
		}
		publicationsAuditedCounter.Add(float64(summary.TotalChecked - summary.Skipped))
		c.JSON(http.StatusOK, summary)
	})

	// Reparatur-Lauf über verdächtige DOIs.
	rg.POST("/repair", func(c *gin.Context) {
		limit, _ := strconv.Atoi(c.DefaultQuery("limit", "0"))
		outcomes, err := repairer.RepairBatch(c.Request.Context(), limit)
		if err != nil {
			log.Error("Repair batch failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		repaired := 0
		for _, o := range outcomes {
			if o.Status == services.RepairStatusRepaired {
				repaired++
			}
		}
		doisRepairedCounter.Add(float64(repaired))
		c.JSON(http.StatusOK, gin.H{"checked": len(outcomes), "repaired": repaired, "outcomes": outcomes})
	})
}
