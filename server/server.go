package server

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/gammazero/workerpool"
	"github.com/google/uuid"
	"github.com/juju/errors"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	log "github.com/sirupsen/logrus"

	"github.com/warriorguo/reteflow"
	"github.com/warriorguo/reteflow/dataset"
	"github.com/warriorguo/reteflow/store"
	"github.com/warriorguo/reteflow/types"
)

/**
 * Server is the HTTP layer in front of the engine: it accepts workflow
 * documents from the builder, runs them against the configured dataset
 * and serves the processed files back. Every run builds its own engine,
 * so concurrent requests never share evaluation state; the worker pool
 * only bounds how many runs execute at once.
 */
type Server struct {
	opts    *Options
	echo    *echo.Echo
	pool    *workerpool.WorkerPool
	archive *runArchive
}

func New(s store.Store, opts *Options) *Server {
	if opts == nil {
		opts = NewOptions()
	}

	srv := &Server{
		opts:    opts,
		echo:    echo.New(),
		pool:    workerpool.New(opts.MaxConcurrentRuns),
		archive: newRunArchive(s),
	}
	srv.echo.HideBanner = true
	srv.echo.Use(middleware.Logger())
	srv.echo.Use(middleware.Recover())
	srv.routes()
	return srv
}

func (s *Server) routes() {
	s.echo.POST("/process_workflow", s.processWorkflow)
	s.echo.GET("/processed_files/:name", s.downloadProcessed)
	s.echo.GET("/results/:name", s.showResults)
	s.echo.GET("/runs", s.listRuns)
	s.echo.GET("/runs/:id", s.getRun)

	if s.opts.StaticDir != "" {
		s.echo.Static("/", s.opts.StaticDir)
	}
}

// Handler exposes the routed handler, mainly so tests can drive the
// server without a listening socket.
func (s *Server) Handler() http.Handler {
	return s.echo
}

func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.opts.Host, s.opts.Port)
	log.Infof("serving workflow API on %s, input dataset %s", addr, s.opts.InputFile)
	return errors.Trace(s.echo.Start(addr))
}

func (s *Server) Shutdown(ctx context.Context) error {
	s.pool.StopWait()
	return errors.Trace(s.echo.Shutdown(ctx))
}

/**
 * processWorkflow accepts the builder's workflow JSON, runs the whole
 * input dataset through it and responds with the run statistics plus
 * the URLs of the produced file. Graph defects the client can fix
 * (load errors, cycles) come back as 400, everything else as 500.
 */
func (s *Server) processWorkflow(c echo.Context) error {
	wf := &types.Workflow{}
	if err := c.Bind(wf); err != nil {
		log.Errorf("process_workflow rejected: %v", err)
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Request must be JSON"})
	}
	if len(wf.Nodes) == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "No valid workflow data provided"})
	}

	engineOpts := []types.EngineOption{}
	if name := c.QueryParam("dataset"); name != "" {
		engineOpts = append(engineOpts, types.WithDataset(name))
	} else if s.opts.DefaultDataset != "" {
		engineOpts = append(engineOpts, types.WithDataset(s.opts.DefaultDataset))
	}
	if s.opts.StrictColumns {
		engineOpts = append(engineOpts, types.EnableStrictColumns())
	}

	eng, err := reteflow.New(wf, engineOpts...)
	if err != nil {
		if types.IsLoadError(err) {
			log.Warnf("workflow failed to load: %v", err)
			return c.JSON(http.StatusBadRequest, echo.Map{"error": errors.Cause(err).Error()})
		}
		if ce, ok := types.AsCycleError(err); ok {
			log.Warnf("workflow rejected, cycle over nodes %v", ce.Nodes)
			return c.JSON(http.StatusBadRequest, echo.Map{"error": ce.Error()})
		}
		log.Errorf("engine construction failed: %v", errors.ErrorStack(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "An internal server error occurred."})
	}

	source, err := dataset.OpenCSV(s.opts.InputFile)
	if err != nil {
		log.Errorf("input dataset unreadable: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Server-side error: Input data file not found."})
	}

	outputName := fmt.Sprintf("processed_%s_%s",
		time.Now().Format("20060102-150405"), filepath.Base(s.opts.InputFile))
	sink := dataset.NewCSVSink(filepath.Join(s.opts.OutputDir, outputName))

	var (
		result *types.RunResult
		runErr error
	)
	// SubmitWait keeps the request synchronous while the pool caps how
	// many datasets are being processed at the same time
	s.pool.SubmitWait(func() {
		result, runErr = reteflow.ProcessDataset(eng, source, sink)
	})
	if runErr != nil {
		log.Errorf("workflow run failed: %v", errors.ErrorStack(runErr))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "An internal server error occurred."})
	}

	record := &types.RunRecord{
		ID:          uuid.NewString(),
		Dataset:     s.opts.DefaultDataset,
		Nodes:       len(wf.Nodes),
		Connections: len(wf.Connections),
		OutputFile:  outputName,
		Stats:       result.Stats,
		CreatedAt:   time.Now().UTC(),
	}
	if err := s.archive.save(c.Request().Context(), record); err != nil {
		// the run itself succeeded, losing the archive entry is not
		// worth failing the request over
		log.Errorf("archive run %s failed: %v", record.ID, err)
	}

	return c.JSON(http.StatusOK, echo.Map{
		"message":          "Workflow processed successfully!",
		"stats":            result.Stats,
		"output_filename":  outputName,
		"run_id":           record.ID,
		"download_url":     "/processed_files/" + outputName,
		"results_page_url": "/results/" + outputName,
	})
}

func (s *Server) downloadProcessed(c echo.Context) error {
	// Base strips any path the client smuggled into the name
	name := filepath.Base(c.Param("name"))
	path := filepath.Join(s.opts.OutputDir, name)
	if _, err := os.Stat(path); err != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": fmt.Sprintf("no processed file named %s", name)})
	}
	return c.Attachment(path, name)
}

func (s *Server) showResults(c echo.Context) error {
	name := filepath.Base(c.Param("name"))
	record, err := s.archive.findByOutputFile(c.Request().Context(), name)
	if err != nil {
		if errors.Is(err, errors.NotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": fmt.Sprintf("no run produced %s", name)})
		}
		log.Errorf("results lookup for %s failed: %v", name, err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "An internal server error occurred."})
	}

	return c.JSON(http.StatusOK, echo.Map{
		"filename":     name,
		"download_url": "/processed_files/" + name,
		"stats":        record.Stats,
	})
}

func (s *Server) listRuns(c echo.Context) error {
	records, err := s.archive.list(c.Request().Context())
	if err != nil {
		log.Errorf("list runs failed: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "An internal server error occurred."})
	}
	return c.JSON(http.StatusOK, echo.Map{"runs": records})
}

func (s *Server) getRun(c echo.Context) error {
	record, err := s.archive.load(c.Request().Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, errors.NotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": fmt.Sprintf("no run with id %s", c.Param("id"))})
		}
		log.Errorf("load run %s failed: %v", c.Param("id"), err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "An internal server error occurred."})
	}
	return c.JSON(http.StatusOK, record)
}
