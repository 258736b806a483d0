package sales

import (
	"context"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	pkgerrors "salesdash/pkg/errors"
)

// Repository supplies the base record collection once per load.
type Repository interface {
	Load(ctx context.Context) ([]SaleRecord, error)
	Name() string
}

type SampleRepository struct{}

func NewSampleRepository() *SampleRepository {
	return &SampleRepository{}
}

func (r *SampleRepository) Name() string { return "sample" }

func (r *SampleRepository) Load(ctx context.Context) ([]SaleRecord, error) {
	return SampleRecords(), nil
}

// FileRepository reads records from a YAML or JSON file. The document is
// either a bare list or a mapping with a "sales" list.
type FileRepository struct {
	path string
}

func NewFileRepository(path string) *FileRepository {
	return &FileRepository{path: path}
}

func (r *FileRepository) Name() string { return "file" }

type salesDocument struct {
	Sales []SaleRecord `yaml:"sales"`
}

func (r *FileRepository) Load(ctx context.Context) ([]SaleRecord, error) {
	data, err := os.ReadFile(r.path)
	if err != nil {
		return nil, fmt.Errorf("failed to read sales file %s: %w", r.path, err)
	}
	return DecodeRecords(data)
}

// DecodeRecords parses a YAML/JSON payload and validates every record.
func DecodeRecords(data []byte) ([]SaleRecord, error) {
	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, pkgerrors.Wrap(fmt.Errorf("failed to parse sales document: %w", err), pkgerrors.ErrValidation)
	}

	var records []SaleRecord
	if len(root.Content) > 0 && root.Content[0].Kind == yaml.SequenceNode {
		if err := root.Content[0].Decode(&records); err != nil {
			return nil, pkgerrors.Wrap(fmt.Errorf("failed to decode sales list: %w", err), pkgerrors.ErrValidation)
		}
	} else {
		var doc salesDocument
		if err := root.Decode(&doc); err != nil {
			return nil, pkgerrors.Wrap(fmt.Errorf("failed to decode sales document: %w", err), pkgerrors.ErrValidation)
		}
		records = doc.Sales
	}

	if err := ValidateRecords(records); err != nil {
		return nil, err
	}
	return records, nil
}

// ValidateRecords rejects records without an id, duplicated ids and unknown statuses.
func ValidateRecords(records []SaleRecord) error {
	seen := make(map[string]struct{}, len(records))
	for i, r := range records {
		if r.ID == "" {
			return pkgerrors.ErrValidation.
				WithMessage("sale id is required").
				WithDetail("index", i)
		}
		if _, dup := seen[r.ID]; dup {
			return pkgerrors.ErrValidation.
				WithMessage("duplicate sale id").
				WithDetail("sale_id", r.ID)
		}
		seen[r.ID] = struct{}{}
		if !r.ShippingStatus.Valid() {
			return pkgerrors.ErrValidation.
				WithMessage(fmt.Sprintf("unknown shipping status %q", r.ShippingStatus)).
				WithDetail("sale_id", r.ID)
		}
	}
	return nil
}
