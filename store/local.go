package store

import (
	"context"
	"encoding/json"
	"errors"

	"jiahe-site/models"
)

// Local serves the controller straight from Documents when the process
// hosts the store itself. It answers like the HTTP endpoint would.
type Local struct {
	docs Documents
}

func NewLocal(docs Documents) *Local {
	return &Local{docs: docs}
}

func (l *Local) Fetch(ctx context.Context) (*models.SiteData, int64, error) {
	doc, err := l.docs.Load(ctx)
	if err != nil {
		return nil, 0, err
	}
	data, err := DecodeSiteData(doc.Payload)
	if err != nil {
		return nil, 0, err
	}
	return data, doc.Version, nil
}

func (l *Local) Replace(ctx context.Context, data *models.SiteData, baseVersion int64) (*models.StoreResult, error) {
	payload, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}

	version, err := l.docs.Save(ctx, payload, baseVersion)
	if errors.Is(err, ErrVersionConflict) {
		return &models.StoreResult{Message: ErrVersionConflict.Error() + "; reload before saving"}, nil
	}
	if err != nil {
		return nil, err
	}
	return &models.StoreResult{Success: true, Message: "saved", Version: version}, nil
}
