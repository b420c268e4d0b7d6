package core

import "readingcore/pkg/domain"

type (
	Collection    = domain.Collection
	Base          = domain.Base
	Account       = domain.Account
	Profile       = domain.Profile
	Book          = domain.Book
	ReadingRecord = domain.ReadingRecord
	Child         = domain.Child
	ReadingGoal   = domain.ReadingGoal
	GoalPeriod    = domain.GoalPeriod
	Change        = domain.Change
	Action        = domain.Action
	RecordStore   = domain.RecordStore
)

const (
	CollectionAccounts       = domain.CollectionAccounts
	CollectionBooks          = domain.CollectionBooks
	CollectionReadingRecords = domain.CollectionReadingRecords
	CollectionProfiles       = domain.CollectionProfiles
	CollectionChildren       = domain.CollectionChildren
	CollectionGoals          = domain.CollectionGoals
	CollectionSession        = domain.CollectionSession
)

const (
	ActionCreate = domain.ActionCreate
	ActionUpdate = domain.ActionUpdate
	ActionDelete = domain.ActionDelete
)

// storedCollections lists the durable collection keys in load/persist order.
var storedCollections = []Collection{
	CollectionAccounts,
	CollectionBooks,
	CollectionReadingRecords,
	CollectionProfiles,
	CollectionChildren,
	CollectionGoals,
}
