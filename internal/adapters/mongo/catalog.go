package mongo

import (
	"context"
	"sort"
	"time"

	"github.com/aerofare/booking-engine/internal/catalog"
	"github.com/aerofare/booking-engine/internal/domain"
	"github.com/aerofare/booking-engine/internal/observability"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// CatalogRepository serves the flight/airline/airport reference data
// from Mongo. Flight documents are denormalized with their airline and
// airport facts, matching what the search endpoints return.
type CatalogRepository struct {
	flights  *mongo.Collection
	airlines *mongo.Collection
	airports *mongo.Collection
	logger   observability.Logger
}

func NewCatalogRepository(db *mongo.Database, logger observability.Logger) *CatalogRepository {
	return &CatalogRepository{
		flights:  db.Collection("flights"),
		airlines: db.Collection("airlines"),
		airports: db.Collection("airports"),
		logger:   logger,
	}
}

type FlightDoc struct {
	ID              int64     `bson:"_id"`
	FlightNumber    string    `bson:"flight_number"`
	AirlineName     string    `bson:"airline_name"`
	AirlineCode     string    `bson:"airline_code"`
	OriginCity      string    `bson:"origin_city"`
	OriginIATA      string    `bson:"origin_iata"`
	DestinationCity string    `bson:"destination_city"`
	DestinationIATA string    `bson:"destination_iata"`
	Departure       time.Time `bson:"departure"`
	Arrival         time.Time `bson:"arrival"`
	BasePrice       float64   `bson:"base_price"`
	TotalSeats      int       `bson:"total_seats"`
	CreatedAt       time.Time `bson:"created_at"`
}

func (d FlightDoc) toDomain() domain.Flight {
	return domain.Flight{
		ID:              d.ID,
		FlightNumber:    d.FlightNumber,
		AirlineName:     d.AirlineName,
		AirlineCode:     d.AirlineCode,
		OriginCity:      d.OriginCity,
		OriginIATA:      d.OriginIATA,
		DestinationCity: d.DestinationCity,
		DestinationIATA: d.DestinationIATA,
		Departure:       d.Departure,
		Arrival:         d.Arrival,
		BasePrice:       d.BasePrice,
		TotalSeats:      d.TotalSeats,
	}
}

func fromDomain(f domain.Flight) FlightDoc {
	return FlightDoc{
		ID:              f.ID,
		FlightNumber:    f.FlightNumber,
		AirlineName:     f.AirlineName,
		AirlineCode:     f.AirlineCode,
		OriginCity:      f.OriginCity,
		OriginIATA:      f.OriginIATA,
		DestinationCity: f.DestinationCity,
		DestinationIATA: f.DestinationIATA,
		Departure:       f.Departure,
		Arrival:         f.Arrival,
		BasePrice:       f.BasePrice,
		TotalSeats:      f.TotalSeats,
		CreatedAt:       time.Now().UTC(),
	}
}

// SeedCatalog replaces the reference collections. Used by cmd/seed.
func (c *CatalogRepository) SeedCatalog(ctx context.Context, flights []domain.Flight, airlines []catalog.Airline, airports []catalog.Airport) error {
	for _, coll := range []*mongo.Collection{c.flights, c.airlines, c.airports} {
		if err := coll.Drop(ctx); err != nil {
			return err
		}
	}

	docs := make([]interface{}, 0, len(flights))
	for _, f := range flights {
		docs = append(docs, fromDomain(f))
	}
	if _, err := c.flights.InsertMany(ctx, docs); err != nil {
		return err
	}

	airlineDocs := make([]interface{}, 0, len(airlines))
	for _, a := range airlines {
		airlineDocs = append(airlineDocs, a)
	}
	if _, err := c.airlines.InsertMany(ctx, airlineDocs); err != nil {
		return err
	}

	airportDocs := make([]interface{}, 0, len(airports))
	for _, a := range airports {
		airportDocs = append(airportDocs, a)
	}
	_, err := c.airports.InsertMany(ctx, airportDocs)
	return err
}

// Flights returns the full schedule ordered by departure.
func (c *CatalogRepository) Flights(ctx context.Context) ([]domain.Flight, error) {
	return c.findFlights(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "departure", Value: 1}}))
}

func (c *CatalogRepository) Search(ctx context.Context, p catalog.SearchParams) ([]domain.Flight, error) {
	filter := bson.M{}
	if p.Origin != "" {
		filter["$or"] = bson.A{
			bson.M{"origin_city": caseInsensitive(p.Origin)},
			bson.M{"origin_iata": caseInsensitive(p.Origin)},
		}
	}
	if p.Destination != "" {
		filter["$and"] = bson.A{bson.M{"$or": bson.A{
			bson.M{"destination_city": caseInsensitive(p.Destination)},
			bson.M{"destination_iata": caseInsensitive(p.Destination)},
		}}}
	}
	if p.Date != "" {
		day, err := time.Parse("2006-01-02", p.Date)
		if err != nil {
			return nil, domain.ErrInvalidInput
		}
		filter["departure"] = bson.M{"$gte": day, "$lt": day.AddDate(0, 0, 1)}
	}
	price := bson.M{}
	if p.MinPrice != nil {
		price["$gte"] = *p.MinPrice
	}
	if p.MaxPrice != nil {
		price["$lte"] = *p.MaxPrice
	}
	if len(price) > 0 {
		filter["base_price"] = price
	}

	sortKey := "departure"
	switch p.Sort {
	case catalog.SortPrice:
		sortKey = "base_price"
	case catalog.SortDuration:
		sortKey = "departure" // duration ordering is refined in memory below
	}
	flights, err := c.findFlights(ctx, filter, options.Find().SetSort(bson.D{{Key: sortKey, Value: 1}}))
	if err != nil {
		return nil, err
	}
	if p.Sort == catalog.SortDuration {
		sortByDuration(flights)
	}
	return flights, nil
}

func (c *CatalogRepository) Airlines(ctx context.Context) ([]catalog.Airline, error) {
	cur, err := c.airlines.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "name", Value: 1}}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	var out []catalog.Airline
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *CatalogRepository) Airports(ctx context.Context) ([]catalog.Airport, error) {
	cur, err := c.airports.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "city", Value: 1}}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	var out []catalog.Airport
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *CatalogRepository) findFlights(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]domain.Flight, error) {
	cur, err := c.flights.Find(ctx, filter, opts)
	if err != nil {
		c.logger.WithError(err).Error("flight query failed")
		return nil, err
	}
	defer cur.Close(ctx)

	var out []domain.Flight
	for cur.Next(ctx) {
		var doc FlightDoc
		if err := cur.Decode(&doc); err != nil {
			return nil, err
		}
		out = append(out, doc.toDomain())
	}
	return out, cur.Err()
}

func caseInsensitive(v string) bson.M {
	return bson.M{"$regex": "^" + v + "$", "$options": "i"}
}

func sortByDuration(fs []domain.Flight) {
	sort.Slice(fs, func(i, j int) bool {
		return fs[i].Arrival.Sub(fs[i].Departure) < fs[j].Arrival.Sub(fs[j].Departure)
	})
}
