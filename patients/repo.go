package patients

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/fx"

	"github.com/healthhive/registry/store"
)

const patientsCollectionName = "patients"

//go:generate mockgen --build_flags=--mod=mod -source=./repo.go -destination=./test/mock_repository.go -package test -aux_files=github.com/healthhive/registry/patients=patients.go MockRepository

type Repository interface {
	Create(ctx context.Context, patient *Patient) (*Patient, error)
	Get(ctx context.Context, patientId string) (*Patient, error)
	List(ctx context.Context, filter *Filter, pagination store.Pagination) ([]*Patient, int64, error)
	Update(ctx context.Context, patientId string, update *Patient) (*Patient, error)
	UpdateSnapshot(ctx context.Context, patientId string, snapshot *Snapshot) error
	Deactivate(ctx context.Context, patientId string) error
}

func NewRepository(db *mongo.Database, lifecycle fx.Lifecycle) (Repository, error) {
	repo := &repository{
		collection: db.Collection(patientsCollectionName),
	}

	lifecycle.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			return repo.Initialize(ctx)
		},
	})

	return repo, nil
}

type repository struct {
	collection *mongo.Collection
}

func (r *repository) Initialize(ctx context.Context) error {
	_, err := r.collection.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys: bson.D{
				{Key: "patient_id", Value: 1},
			},
			Options: options.Index().
				SetUnique(true).
				SetName("UniquePatientId"),
		},
		{
			Keys: bson.D{
				{Key: "barangay", Value: 1},
				{Key: "is_active", Value: 1},
			},
			Options: options.Index().
				SetName("BarangayActive"),
		},
		{
			Keys: bson.D{
				{Key: "conditions", Value: 1},
			},
			Options: options.Index().
				SetName("Conditions"),
		},
	})
	return err
}

func (r *repository) Create(ctx context.Context, patient *Patient) (*Patient, error) {
	// Duplicate detection matches the registration form identity:
	// same name, birth date and barangay.
	duplicateSelector := bson.M{
		"first_name": patient.FirstName,
		"last_name":  patient.LastName,
		"barangay":   patient.Barangay,
	}
	if patient.DateOfBirth != nil {
		duplicateSelector["date_of_birth"] = patient.DateOfBirth
	}

	count, err := r.collection.CountDocuments(ctx, duplicateSelector)
	if err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, ErrDuplicate
	}

	now := time.Now().UTC()
	patient.CreatedAt = now
	patient.UpdatedAt = now
	patient.IsActive = true
	if patient.PatientId == "" {
		patient.PatientId = NewPatientId(now)
	}

	if _, err = r.collection.InsertOne(ctx, patient); err != nil {
		return nil, err
	}

	return r.Get(ctx, patient.PatientId)
}

func (r *repository) Get(ctx context.Context, patientId string) (*Patient, error) {
	patient := &Patient{}
	err := r.collection.FindOne(ctx, bson.M{"patient_id": patientId}).Decode(patient)
	if err == mongo.ErrNoDocuments {
		return nil, ErrNotFound
	} else if err != nil {
		return nil, err
	}

	return patient, nil
}

func (r *repository) List(ctx context.Context, filter *Filter, pagination store.Pagination) ([]*Patient, int64, error) {
	selector := filter.selector()

	total, err := r.collection.CountDocuments(ctx, selector)
	if err != nil {
		return nil, 0, err
	}

	opts := options.Find().
		SetLimit(int64(pagination.Limit)).
		SetSkip(int64(pagination.Offset)).
		SetSort(bson.D{
			{Key: "last_name", Value: 1},
			{Key: "first_name", Value: 1},
		})

	cursor, err := r.collection.Find(ctx, selector, opts)
	if err != nil {
		return nil, 0, err
	}

	var result []*Patient
	if err = cursor.All(ctx, &result); err != nil {
		return nil, 0, err
	}

	return result, total, nil
}

func (r *repository) Update(ctx context.Context, patientId string, update *Patient) (*Patient, error) {
	update.UpdatedAt = time.Now().UTC()
	set := bson.M{
		"first_name":      update.FirstName,
		"middle_name":     update.MiddleName,
		"last_name":       update.LastName,
		"date_of_birth":   update.DateOfBirth,
		"age":             update.Age,
		"sex":             update.Sex,
		"barangay":        update.Barangay,
		"purok":           update.Purok,
		"address":         update.Address,
		"contact_number":  update.ContactNumber,
		"occupation":      update.Occupation,
		"education_level": update.EducationLevel,
		"marital_status":  update.MaritalStatus,
		"conditions":      update.Conditions,
		"consent_records": update.ConsentRecords,
		"updated_at":      update.UpdatedAt,
		"updated_by":      update.UpdatedBy,
	}

	res, err := r.collection.UpdateOne(ctx, bson.M{"patient_id": patientId}, bson.M{"$set": set})
	if err != nil {
		return nil, err
	}
	if res.MatchedCount == 0 {
		return nil, ErrNotFound
	}

	return r.Get(ctx, patientId)
}

func (r *repository) UpdateSnapshot(ctx context.Context, patientId string, snapshot *Snapshot) error {
	set := bson.M{
		"updated_at": time.Now().UTC(),
	}
	if snapshot.RiskLevel != nil {
		set["risk_level"] = *snapshot.RiskLevel
	}
	if snapshot.FlaggedForFollowUp != nil {
		set["flagged_for_follow_up"] = *snapshot.FlaggedForFollowUp
	}
	if snapshot.CurrentMedications != nil {
		set["current_medications"] = snapshot.CurrentMedications
	}
	if snapshot.PreviousMedications != nil {
		set["previous_medications"] = snapshot.PreviousMedications
	}
	if snapshot.MedicationsProvided != nil {
		set["medications_provided"] = *snapshot.MedicationsProvided
	}
	if snapshot.MedicationsTaken != nil {
		set["medications_taken_regularly"] = *snapshot.MedicationsTaken
	}

	res, err := r.collection.UpdateOne(ctx, bson.M{"patient_id": patientId}, bson.M{"$set": set})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}

	return nil
}

func (r *repository) Deactivate(ctx context.Context, patientId string) error {
	update := bson.M{
		"$set": bson.M{
			"is_active":  false,
			"updated_at": time.Now().UTC(),
		},
	}

	res, err := r.collection.UpdateOne(ctx, bson.M{"patient_id": patientId}, update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}

	return nil
}

func (f *Filter) selector() bson.M {
	selector := f.Region.Selector("barangay")
	if !f.IncludeInactive {
		selector["is_active"] = true
	}
	if f.Condition != nil {
		selector["conditions"] = *f.Condition
	}
	if f.RiskLevel != nil {
		selector["risk_level"] = *f.RiskLevel
	}
	if f.Search != nil && *f.Search != "" {
		pattern := primitive.Regex{Pattern: *f.Search, Options: "i"}
		selector["$or"] = bson.A{
			bson.M{"first_name": pattern},
			bson.M{"last_name": pattern},
			bson.M{"patient_id": pattern},
		}
	}
	return selector
}
