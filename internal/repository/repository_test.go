package repository

import (
	"context"
	"errors"
	"strconv"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/ory/dockertest/v3"
	"github.com/stretchr/testify/suite"
	"go.uber.org/zap"

	"inboxagent/internal/model"
	"inboxagent/pkg/config"
	"inboxagent/pkg/db"
)

const (
	testDBUser     = "inbox"
	testDBPassword = "inbox_pwd"
	testDBName     = "inbox_test"
)

func TestRepositories(t *testing.T) {
	suite.Run(t, new(RepositorySuite))
}

type RepositorySuite struct {
	suite.Suite
	dockerPool       *dockertest.Pool
	postgresResource *dockertest.Resource
	pool             *pgxpool.Pool

	emails  *EmailRepository
	prompts *PromptRepository
	drafts  *DraftRepository
}

func (suite *RepositorySuite) SetupSuite() {
	pool, err := dockertest.NewPool("")
	if err == nil {
		err = pool.Client.Ping()
	}
	if err != nil {
		suite.T().Skipf("docker not available: %s", err)
	}
	suite.dockerPool = pool
	pool.MaxWait = 60 * time.Second

	suite.postgresResource, err = pool.RunWithOptions(&dockertest.RunOptions{
		Repository: "postgres",
		Tag:        "16-alpine",
		Env: []string{
			"POSTGRES_USER=" + testDBUser,
			"POSTGRES_PASSWORD=" + testDBPassword,
			"POSTGRES_DB=" + testDBName,
		},
	})
	if err != nil {
		suite.T().Fatalf("Could not run postgres from docker: %s", err)
	}

	port, err := strconv.Atoi(suite.postgresResource.GetPort("5432/tcp"))
	suite.Require().NoError(err)
	cfg := config.DBConfig{
		Host:     "localhost",
		Port:     port,
		User:     testDBUser,
		Password: testDBPassword,
		Name:     testDBName,
	}

	// 容器就绪前重试
	if err = pool.Retry(func() error {
		var err error
		suite.pool, err = db.NewConnection(context.Background(), cfg, zap.NewNop())
		return err
	}); err != nil {
		suite.T().Fatalf("Could not connect to postgres: %s", err)
	}

	suite.Require().NoError(EnsureSchema(context.Background(), suite.pool))
	// 第二次执行必须是无操作
	suite.Require().NoError(EnsureSchema(context.Background(), suite.pool))

	suite.emails = NewEmailRepository(suite.pool)
	suite.prompts = NewPromptRepository(suite.pool)
	suite.drafts = NewDraftRepository(suite.pool)
}

func (suite *RepositorySuite) SetupTest() {
	_, err := suite.pool.Exec(context.Background(), `TRUNCATE drafts, emails, prompts RESTART IDENTITY`)
	suite.Require().NoError(err)
}

func (suite *RepositorySuite) TearDownSuite() {
	if suite.pool != nil {
		suite.pool.Close()
	}
	if suite.dockerPool != nil && suite.postgresResource != nil {
		_ = suite.dockerPool.Purge(suite.postgresResource)
	}
}

func (suite *RepositorySuite) TestEmail_CreateFindList() {
	ctx := context.Background()

	older, err := suite.emails.Create(ctx, model.IncomingEmail{
		Sender: "a@x.com", Subject: "old", Body: "b", Timestamp: "2024-01-01T09:00:00Z",
	}, "Work", "none")
	suite.Require().NoError(err)
	newer, err := suite.emails.Create(ctx, model.IncomingEmail{
		Sender: "b@x.com", Subject: "new", Body: "b", Timestamp: "2024-03-01T09:00:00Z",
	}, "Spam", `{"tasks":[]}`)
	suite.Require().NoError(err)

	got, err := suite.emails.FindByID(ctx, older)
	suite.Require().NoError(err)
	suite.Equal("old", got.Subject)
	suite.Equal("Work", *got.Category)
	suite.Equal("none", *got.ActionItems)

	all, err := suite.emails.List(ctx, 0)
	suite.Require().NoError(err)
	suite.Require().Len(all, 2)
	suite.Equal(newer, all[0].ID)

	limited, err := suite.emails.List(ctx, 1)
	suite.Require().NoError(err)
	suite.Len(limited, 1)
}

func (suite *RepositorySuite) TestEmail_NotFound() {
	ctx := context.Background()

	_, err := suite.emails.FindByID(ctx, 999)
	suite.True(errors.Is(err, ErrNotFound))
	suite.True(errors.Is(suite.emails.UpdateCategory(ctx, 999, "Work"), ErrNotFound))
	suite.True(errors.Is(suite.emails.UpdateActionItems(ctx, 999, "x"), ErrNotFound))
}

func (suite *RepositorySuite) TestEmail_SettersTouchOneField() {
	ctx := context.Background()
	id, err := suite.emails.Create(ctx, model.IncomingEmail{Sender: "s", Subject: "s", Body: "b", Timestamp: "t"}, "Work", "items")
	suite.Require().NoError(err)

	suite.Require().NoError(suite.emails.UpdateCategory(ctx, id, "Personal"))
	got, err := suite.emails.FindByID(ctx, id)
	suite.Require().NoError(err)
	suite.Equal("Personal", *got.Category)
	suite.Equal("items", *got.ActionItems)

	suite.Require().NoError(suite.emails.UpdateActionItems(ctx, id, "new items"))
	got, err = suite.emails.FindByID(ctx, id)
	suite.Require().NoError(err)
	suite.Equal("Personal", *got.Category)
	suite.Equal("new items", *got.ActionItems)
}

func (suite *RepositorySuite) TestEmail_DeleteAllKeepsDrafts() {
	ctx := context.Background()
	id, err := suite.emails.Create(ctx, model.IncomingEmail{Sender: "s", Subject: "s", Body: "b", Timestamp: "t"}, "Work", "")
	suite.Require().NoError(err)
	draftID, err := suite.drafts.Create(ctx, &id, "Re: s", "thanks", nil)
	suite.Require().NoError(err)

	n, err := suite.emails.DeleteAll(ctx)
	suite.Require().NoError(err)
	suite.EqualValues(1, n)

	d, err := suite.drafts.FindByID(ctx, draftID)
	suite.Require().NoError(err)
	suite.Nil(d.EmailID)
}

func (suite *RepositorySuite) TestPrompt_UpsertLastWriteWins() {
	ctx := context.Background()

	first, err := suite.prompts.Upsert(ctx, "categorization", "v1", "first")
	suite.Require().NoError(err)
	second, err := suite.prompts.Upsert(ctx, "categorization", "v2", "second")
	suite.Require().NoError(err)
	suite.Equal(first.ID, second.ID)

	got, err := suite.prompts.FindByName(ctx, "categorization")
	suite.Require().NoError(err)
	suite.Equal("v2", got.Content)
	suite.Equal("second", got.Description)
	suite.False(got.UpdatedAt.Before(first.UpdatedAt))

	_, err = suite.prompts.FindByName(ctx, "missing")
	suite.True(errors.Is(err, ErrNotFound))
}

func (suite *RepositorySuite) TestPrompt_InsertIfAbsentKeepsEdits() {
	ctx := context.Background()
	_, err := suite.prompts.Upsert(ctx, "auto_reply", "edited", "")
	suite.Require().NoError(err)

	inserted, err := suite.prompts.InsertIfAbsent(ctx, "auto_reply", "default", "")
	suite.Require().NoError(err)
	suite.False(inserted)
	inserted, err = suite.prompts.InsertIfAbsent(ctx, "summarization", "default", "")
	suite.Require().NoError(err)
	suite.True(inserted)

	got, err := suite.prompts.FindByName(ctx, "auto_reply")
	suite.Require().NoError(err)
	suite.Equal("edited", got.Content)

	all, err := suite.prompts.List(ctx)
	suite.Require().NoError(err)
	suite.Len(all, 2)
}

func (suite *RepositorySuite) TestDraft_CreateListDelete() {
	ctx := context.Background()
	meta := model.NewEmailMetadata("say hi").Encode()

	first, err := suite.drafts.Create(ctx, nil, "Hi", "hello", &meta)
	suite.Require().NoError(err)
	second, err := suite.drafts.Create(ctx, nil, "Hi again", "hello", nil)
	suite.Require().NoError(err)

	list, err := suite.drafts.List(ctx)
	suite.Require().NoError(err)
	suite.Require().Len(list, 2)
	suite.Equal(second, list[0].ID)

	got, err := suite.drafts.FindByID(ctx, first)
	suite.Require().NoError(err)
	suite.JSONEq(meta, *got.Metadata)

	suite.Require().NoError(suite.drafts.Delete(ctx, first))
	suite.Require().NoError(suite.drafts.Delete(ctx, first))
	_, err = suite.drafts.FindByID(ctx, first)
	suite.True(errors.Is(err, ErrNotFound))
}
