package collision

import (
	"math"

	"github.com/saad-KH/CrispyPhysics-sub000/geom"
	"github.com/saad-KH/CrispyPhysics-sub000/shape"
)

// CollideCircles computes the manifold of two circles. The shapes touch
// when the squared center distance is at most the squared radius sum.
func CollideCircles(circleA *shape.Circle, xfA geom.Transform, circleB *shape.Circle, xfB geom.Transform) Manifold {
	var m Manifold

	pA := xfA.Apply(circleA.Position)
	pB := xfB.Apply(circleB.Position)

	radius := circleA.Radius() + circleB.Radius()
	if geom.DistanceSquared(pA, pB) > radius*radius {
		return m
	}

	m.Type = ManifoldCircles
	m.LocalPoint = circleA.Position
	m.PointCount = 1
	m.Points[0].LocalPoint = circleB.Position
	return m
}

// CollidePolygonAndCircle computes the manifold of a polygon A and a
// circle B. The contact id names the polygon face or vertex the circle is
// resting against.
func CollidePolygonAndCircle(polygonA *shape.Polygon, xfA geom.Transform, circleB *shape.Circle, xfB geom.Transform) Manifold {
	var m Manifold

	// Compute circle position in the frame of the polygon.
	cLocal := xfA.ApplyT(xfB.Apply(circleB.Position))

	// Find the min separating edge.
	normalIndex := 0
	separation := -math.MaxFloat64
	radius := polygonA.Radius() + circleB.Radius()
	vertices := polygonA.Vertices
	normals := polygonA.Normals
	count := len(vertices)

	for i := 0; i < count; i++ {
		s := normals[i].Dot(cLocal.Sub(vertices[i]))
		if s > radius {
			// Early out.
			return m
		}
		if s > separation {
			separation = s
			normalIndex = i
		}
	}

	// Vertices that subtend the incident face.
	vertIndex1 := normalIndex
	vertIndex2 := (vertIndex1 + 1) % count
	v1 := vertices[vertIndex1]
	v2 := vertices[vertIndex2]

	m.Type = ManifoldFaceA
	m.Points[0].LocalPoint = circleB.Position

	// If the center is inside the polygon ...
	if separation < geom.Epsilon {
		m.PointCount = 1
		m.LocalNormal = normals[normalIndex]
		m.LocalPoint = v1.Add(v2).Mul(0.5)
		m.Points[0].ID = ContactID{IndexA: uint8(normalIndex), TypeA: FeatureFace}
		return m
	}

	// Compute barycentric coordinates
	u1 := cLocal.Sub(v1).Dot(v2.Sub(v1))
	u2 := cLocal.Sub(v2).Dot(v1.Sub(v2))

	switch {
	case u1 <= 0.0:
		if geom.DistanceSquared(cLocal, v1) > radius*radius {
			return m
		}
		m.PointCount = 1
		m.LocalNormal, _ = geom.Normalize(cLocal.Sub(v1))
		m.LocalPoint = v1
		m.Points[0].ID = ContactID{IndexA: uint8(vertIndex1), TypeA: FeatureVertex}

	case u2 <= 0.0:
		if geom.DistanceSquared(cLocal, v2) > radius*radius {
			return m
		}
		m.PointCount = 1
		m.LocalNormal, _ = geom.Normalize(cLocal.Sub(v2))
		m.LocalPoint = v2
		m.Points[0].ID = ContactID{IndexA: uint8(vertIndex2), TypeA: FeatureVertex}

	default:
		faceCenter := v1.Add(v2).Mul(0.5)
		if cLocal.Sub(faceCenter).Dot(normals[vertIndex1]) > radius {
			return m
		}
		m.PointCount = 1
		m.LocalNormal = normals[vertIndex1]
		m.LocalPoint = faceCenter
		m.Points[0].ID = ContactID{IndexA: uint8(vertIndex1), TypeA: FeatureFace}
	}

	return m
}

// CollideEdgeAndCircle computes the manifold of an edge A and a circle B.
// The circle is classified against the two end vertices and the segment
// interior.
func CollideEdgeAndCircle(edgeA *shape.Edge, xfA geom.Transform, circleB *shape.Circle, xfB geom.Transform) Manifold {
	var m Manifold

	// Compute circle in frame of edge
	q := xfA.ApplyT(xfB.Apply(circleB.Position))

	a := edgeA.Vertex1
	b := edgeA.Vertex2
	e := b.Sub(a)

	// Barycentric coordinates
	u := e.Dot(b.Sub(q))
	v := e.Dot(q.Sub(a))

	radius := edgeA.Radius() + circleB.Radius()
	m.Points[0].LocalPoint = circleB.Position

	// Region A
	if v <= 0.0 {
		if geom.DistanceSquared(q, a) > radius*radius {
			return m
		}
		m.PointCount = 1
		m.Type = ManifoldCircles
		m.LocalPoint = a
		m.Points[0].ID = ContactID{IndexA: 0, TypeA: FeatureVertex}
		return m
	}

	// Region B
	if u <= 0.0 {
		if geom.DistanceSquared(q, b) > radius*radius {
			return m
		}
		m.PointCount = 1
		m.Type = ManifoldCircles
		m.LocalPoint = b
		m.Points[0].ID = ContactID{IndexA: 1, TypeA: FeatureVertex}
		return m
	}

	// Region AB
	den := e.Dot(e)
	p := a.Mul(u).Add(b.Mul(v)).Mul(1.0 / den)
	if geom.DistanceSquared(q, p) > radius*radius {
		return m
	}

	n := geom.CrossSV(1.0, e)
	if n.Dot(q.Sub(a)) < 0.0 {
		n = n.Mul(-1)
	}
	n, _ = geom.Normalize(n)

	m.PointCount = 1
	m.Type = ManifoldFaceA
	m.LocalNormal = n
	m.LocalPoint = a
	m.Points[0].ID = ContactID{IndexA: 0, TypeA: FeatureFace}
	return m
}
