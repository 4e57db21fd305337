package repository

import (
	"context"
	"testing"
	"time"

	"expertaid/reputation-worker-service/internal/app/reputation-worker/entity"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
)

func ratingPtr(v float64) *float64 { return &v }

type ReputationStoreTestSuite struct {
	suite.Suite
	miniRedis *miniredis.Miniredis
	client    *redis.Client
	store     ReputationStore
	ctx       context.Context
}

func (suite *ReputationStoreTestSuite) SetupSuite() {
	mr, err := miniredis.Run()
	suite.Require().NoError(err)
	suite.miniRedis = mr

	suite.client = redis.NewClient(&redis.Options{
		Addr: mr.Addr(),
	})

	suite.store = NewReputationStore(suite.client, 30*time.Minute)
	suite.ctx = context.Background()
}

func (suite *ReputationStoreTestSuite) TearDownSuite() {
	suite.client.Close()
	suite.miniRedis.Close()
}

func (suite *ReputationStoreTestSuite) SetupTest() {
	suite.miniRedis.FlushAll()
}

// ===================== Get/Set Tests =====================

func (suite *ReputationStoreTestSuite) TestSetAndGet_Success() {
	expertID := uuid.New()
	reputation := &entity.ExpertReputation{
		ExpertID:    expertID,
		Rating:      ratingPtr(4.5),
		RatingCount: 12,
		ComputedAt:  time.Now().UTC(),
	}

	err := suite.store.Set(suite.ctx, reputation)
	suite.NoError(err)

	found, err := suite.store.Get(suite.ctx, expertID)
	suite.NoError(err)
	suite.NotNil(found)
	suite.Equal(expertID, found.ExpertID)
	suite.Equal(4.5, *found.Rating)
	suite.Equal(12, found.RatingCount)
}

func (suite *ReputationStoreTestSuite) TestGet_Miss() {
	found, err := suite.store.Get(suite.ctx, uuid.New())

	suite.NoError(err)
	suite.Nil(found)
}

func (suite *ReputationStoreTestSuite) TestAbsentRatingSurvivesRoundTrip() {
	// Эксперт без оценок хранится с nil Rating, не с 0.0
	expertID := uuid.New()
	reputation := &entity.ExpertReputation{
		ExpertID:    expertID,
		Rating:      nil,
		RatingCount: 0,
		ComputedAt:  time.Now().UTC(),
	}

	err := suite.store.Set(suite.ctx, reputation)
	suite.NoError(err)

	found, err := suite.store.Get(suite.ctx, expertID)
	suite.NoError(err)
	suite.NotNil(found)
	suite.Nil(found.Rating)
	suite.Equal(0, found.RatingCount)
}

func (suite *ReputationStoreTestSuite) TestSet_Overwrite() {
	expertID := uuid.New()

	err := suite.store.Set(suite.ctx, &entity.ExpertReputation{
		ExpertID:    expertID,
		Rating:      ratingPtr(3.0),
		RatingCount: 1,
	})
	suite.NoError(err)

	err = suite.store.Set(suite.ctx, &entity.ExpertReputation{
		ExpertID:    expertID,
		Rating:      ratingPtr(4.0),
		RatingCount: 2,
	})
	suite.NoError(err)

	found, err := suite.store.Get(suite.ctx, expertID)
	suite.NoError(err)
	suite.Equal(4.0, *found.Rating)
	suite.Equal(2, found.RatingCount)
}

// ===================== Delete Tests =====================

func (suite *ReputationStoreTestSuite) TestDelete_RemovesKey() {
	expertID := uuid.New()

	err := suite.store.Set(suite.ctx, &entity.ExpertReputation{
		ExpertID:    expertID,
		Rating:      ratingPtr(5.0),
		RatingCount: 3,
	})
	suite.NoError(err)

	err = suite.store.Delete(suite.ctx, expertID)
	suite.NoError(err)

	found, err := suite.store.Get(suite.ctx, expertID)
	suite.NoError(err)
	suite.Nil(found)
}

func (suite *ReputationStoreTestSuite) TestDelete_MissingKeyIsNoop() {
	err := suite.store.Delete(suite.ctx, uuid.New())

	suite.NoError(err)
}

// ===================== TTL Tests =====================

func (suite *ReputationStoreTestSuite) TestTTL_Expiration() {
	expertID := uuid.New()

	err := suite.store.Set(suite.ctx, &entity.ExpertReputation{
		ExpertID:    expertID,
		Rating:      ratingPtr(4.2),
		RatingCount: 7,
	})
	suite.NoError(err)

	suite.miniRedis.FastForward(31 * time.Minute)

	found, err := suite.store.Get(suite.ctx, expertID)
	suite.NoError(err)
	suite.Nil(found)
}

// ===================== Key Format Tests =====================

func (suite *ReputationStoreTestSuite) TestRedisKeyFormat() {
	expertID := uuid.New()

	err := suite.store.Set(suite.ctx, &entity.ExpertReputation{
		ExpertID:    expertID,
		Rating:      ratingPtr(4.0),
		RatingCount: 1,
	})
	suite.NoError(err)

	keys, err := suite.client.Keys(suite.ctx, "expert_reputation:*").Result()
	suite.NoError(err)
	assert.Contains(suite.T(), keys, "expert_reputation:"+expertID.String())
}

func TestReputationStoreTestSuite(t *testing.T) {
	suite.Run(t, new(ReputationStoreTestSuite))
}
