package http

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/graphql-go/graphql"

	"github.com/hailgo/hailgo/internal/core/domain"
)

// buildSchema creates the GraphQL schema wired to our services.
func buildSchema(deps *Dependencies) (graphql.Schema, error) {
	geoPointType := graphql.NewObject(graphql.ObjectConfig{
		Name: "GeoPoint",
		Fields: graphql.Fields{
			"lat": &graphql.Field{Type: graphql.Float},
			"lon": &graphql.Field{Type: graphql.Float},
		},
	})

	placeType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Place",
		Fields: graphql.Fields{
			"id":       &graphql.Field{Type: graphql.String},
			"name":     &graphql.Field{Type: graphql.String},
			"address":  &graphql.Field{Type: graphql.String},
			"location": &graphql.Field{Type: geoPointType},
			"distance": &graphql.Field{Type: graphql.Float},
		},
	})

	estimateType := graphql.NewObject(graphql.ObjectConfig{
		Name: "RouteEstimate",
		Fields: graphql.Fields{
			"distance_meters":  &graphql.Field{Type: graphql.Float},
			"duration_seconds": &graphql.Field{Type: graphql.Float},
			"path":             &graphql.Field{Type: graphql.NewList(geoPointType)},
			"curated":          &graphql.Field{Type: graphql.Boolean},
			"origin_place_id":  &graphql.Field{Type: graphql.String},
			"dest_place_id":    &graphql.Field{Type: graphql.String},
		},
	})

	quoteType := graphql.NewObject(graphql.ObjectConfig{
		Name: "FareQuote",
		Fields: graphql.Fields{
			"amount":        &graphql.Field{Type: graphql.Float},
			"currency":      &graphql.Field{Type: graphql.String},
			"tier":          &graphql.Field{Type: graphql.String},
			"surge_applied": &graphql.Field{Type: graphql.Boolean},
			"quoted_at":     &graphql.Field{Type: graphql.String},
		},
	})

	tripType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Trip",
		Fields: graphql.Fields{
			"trip_id":       &graphql.Field{Type: graphql.String},
			"status":        &graphql.Field{Type: graphql.String},
			"current_index": &graphql.Field{Type: graphql.Int},
			"path_length":   &graphql.Field{Type: graphql.Int},
		},
	})

	queryType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Query",
		Fields: graphql.Fields{
			"places": &graphql.Field{
				Type:        graphql.NewList(placeType),
				Description: "List the full place catalog",
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return deps.Places.List(p.Context), nil
				},
			},
			"searchPlaces": &graphql.Field{
				Type:        graphql.NewList(placeType),
				Description: "Search places by name or address",
				Args: graphql.FieldConfigArgument{
					"query": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
					"limit": &graphql.ArgumentConfig{Type: graphql.Int, DefaultValue: 20},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					q := p.Args["query"].(string)
					limit := p.Args["limit"].(int)
					return deps.Places.Search(p.Context, q, limit)
				},
			},
			"place": &graphql.Field{
				Type:        placeType,
				Description: "Get a place by ID",
				Args: graphql.FieldConfigArgument{
					"id": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return deps.Places.GetByID(p.Context, p.Args["id"].(string))
				},
			},
			"nearestPlace": &graphql.Field{
				Type:        placeType,
				Description: "Resolve a coordinate onto the closest catalog entry",
				Args: graphql.FieldConfigArgument{
					"lat": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Float)},
					"lon": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Float)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					pt := domain.GeoPoint{Lat: p.Args["lat"].(float64), Lon: p.Args["lon"].(float64)}
					return deps.Places.Nearest(p.Context, pt), nil
				},
			},
			"estimate": &graphql.Field{
				Type:        estimateType,
				Description: "Estimate a route between two coordinates",
				Args: graphql.FieldConfigArgument{
					"origin_lat": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Float)},
					"origin_lon": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Float)},
					"dest_lat":   &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Float)},
					"dest_lon":   &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Float)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					origin := domain.GeoPoint{Lat: p.Args["origin_lat"].(float64), Lon: p.Args["origin_lon"].(float64)}
					dest := domain.GeoPoint{Lat: p.Args["dest_lat"].(float64), Lon: p.Args["dest_lon"].(float64)}
					return deps.Estimates.Estimate(p.Context, origin, dest), nil
				},
			},
			"quote": &graphql.Field{
				Type:        quoteType,
				Description: "Price a trip for a distance and service tier",
				Args: graphql.FieldConfigArgument{
					"distance_meters": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Float)},
					"tier":            &graphql.ArgumentConfig{Type: graphql.String, DefaultValue: "economy"},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					dist := p.Args["distance_meters"].(float64)
					tier := domain.Tier(p.Args["tier"].(string))
					return deps.Fares.Quote(p.Context, dist, tier, time.Time{})
				},
			},
			"trips": &graphql.Field{
				Type:        graphql.NewList(tripType),
				Description: "List registered tracking sessions",
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return deps.Tracking.List(), nil
				},
			},
			"trip": &graphql.Field{
				Type:        tripType,
				Description: "Get one tracking session's state",
				Args: graphql.FieldConfigArgument{
					"id": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					sess, err := deps.Tracking.Get(p.Args["id"].(string))
					if err != nil {
						return nil, err
					}
					return sess.State(false), nil
				},
			},
		},
	})

	return graphql.NewSchema(graphql.SchemaConfig{
		Query: queryType,
	})
}

// GraphQLHandler serves the GraphQL endpoint.
func GraphQLHandler(deps *Dependencies) fiber.Handler {
	schema, err := buildSchema(deps)
	if err != nil {
		// This would be a programming error in the schema definition
		panic("graphql schema build: " + err.Error())
	}

	type gqlRequest struct {
		Query         string                 `json:"query"`
		OperationName string                 `json:"operationName"`
		Variables     map[string]interface{} `json:"variables"`
	}

	return func(c *fiber.Ctx) error {
		var req gqlRequest
		if err := c.BodyParser(&req); err != nil {
			return c.Status(400).JSON(fiber.Map{"error": "invalid request body"})
		}

		result := graphql.Do(graphql.Params{
			Schema:         schema,
			RequestString:  req.Query,
			OperationName:  req.OperationName,
			VariableValues: req.Variables,
			Context:        c.Context(),
		})

		if len(result.Errors) > 0 {
			return c.Status(400).JSON(result)
		}
		return c.JSON(result)
	}
}
