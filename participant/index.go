package participant

import "github.com/hashicorp/go-memdb"

const tblParticipants = "participants"

const idxParticipantID = "id"

// schema is the schema of the participant database.
var schema = &memdb.DBSchema{
	Tables: map[string]*memdb.TableSchema{
		tblParticipants: {
			Name: tblParticipants,
			Indexes: map[string]*memdb.IndexSchema{
				idxParticipantID: {
					Name:    idxParticipantID,
					Unique:  true,
					Indexer: &memdb.StringFieldIndex{Field: "ID"},
				},
			},
		},
	},
}
