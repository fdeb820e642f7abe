package utils

import (
	"context"
	"time"

	"lexhub/db"
	"lexhub/models"

	"go.mongodb.org/mongo-driver/bson"
)

// SeedCaseContent populates the case-content collections with a sample
// contract-law case file when they are empty.
func SeedCaseContent() {
	dbCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	count, err := db.MongoDatabase.Collection("issues").CountDocuments(dbCtx, bson.M{})
	if err != nil || count > 0 {
		return
	}

	issues := []interface{}{
		models.Issue{
			ID:        "ISSUE-001",
			Title:     "违约责任是否成立",
			Statement: "甲公司未按期交付货物，乙公司主张解除合同并要求赔偿损失，违约责任是否成立？",
			Elements:  []string{"合同有效成立", "存在违约行为", "造成实际损失", "违约与损失有因果关系", "不存在免责事由"},
			RelatedLaws: []string{
				"L1", "L2",
			},
			Difficulty: "medium",
		},
		models.Issue{
			ID:        "ISSUE-002",
			Title:     "不可抗力能否免责",
			Statement: "甲公司以疫情封控为由主张不可抗力免责，该抗辩能否成立？",
			Elements:  []string{"不可抗力事件存在", "事件与履行不能有因果关系", "已及时通知对方", "已提供证明"},
			RelatedLaws: []string{
				"L3",
			},
			Difficulty: "hard",
		},
	}

	facts := []interface{}{
		models.Fact{ID: "F1", Content: "2024年3月1日，甲公司与乙公司签订买卖合同，约定4月1日前交付设备一批。"},
		models.Fact{ID: "F2", Content: "截至4月15日，甲公司仍未交付任何设备。"},
		models.Fact{ID: "F3", Content: "乙公司因设备缺位停产两周，损失约50万元。"},
		models.Fact{ID: "F4", Content: "甲公司所在园区于3月20日至4月5日实施封控管理。"},
	}

	laws := []interface{}{
		models.Law{ID: "L1", Content: "当事人应当按照约定全面履行自己的义务。当事人应当遵循诚信原则。"},
		models.Law{ID: "L2", Content: "当事人一方不履行合同义务或者履行合同义务不符合约定的，应当承担继续履行、采取补救措施或者赔偿损失等违约责任。"},
		models.Law{ID: "L3", Content: "因不可抗力不能履行合同的，根据不可抗力的影响，部分或者全部免除责任。当事人应当及时通知对方并在合理期限内提供证明。"},
	}

	if _, err := db.MongoDatabase.Collection("issues").InsertMany(dbCtx, issues); err != nil {
		return
	}
	db.MongoDatabase.Collection("facts").InsertMany(dbCtx, facts)
	db.MongoDatabase.Collection("laws").InsertMany(dbCtx, laws)
}
